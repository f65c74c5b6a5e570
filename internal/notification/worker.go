package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool sends allocation-change notifications off the request path. Jobs
// are student ids; each job notifies every push subscription that student's
// browser has registered.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case studentID := <-wp.jobs:
			wp.notifyStudent(ctx, studentID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notification job. When the queue is full the job is
// dropped rather than blocking the caller.
func (wp *WorkerPool) Dispatch(studentID int64) {
	select {
	case wp.jobs <- studentID:
	default:
		log.Printf("Notification queue full, dropping job for student %d", studentID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// notifyStudent fetches the student's subscriptions and current allocation and
// sends one push per subscription.
func (wp *WorkerPool) notifyStudent(ctx context.Context, studentID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("user_id = ?", studentID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for student %d: %v", studentID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	message := wp.buildMessage(ctx, studentID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) buildMessage(ctx context.Context, studentID int64) string {
	var allocation model.Allocation
	err := wp.db.WithContext(ctx).
		Preload("Hostel").
		Where("student_id = ?", studentID).
		Order("id DESC").
		First(&allocation).Error
	if err != nil {
		// The allocation may have been removed since the job was queued.
		return "Your hostel allocation has changed."
	}

	hostelName := allocation.Hostel.Name
	if hostelName == "" {
		hostelName = fmt.Sprintf("hostel %d", allocation.HostelID)
	}
	return fmt.Sprintf("You have been allocated to %s, room %s.", hostelName, allocation.RoomNumber)
}

// send delivers a single push and drops subscriptions the push service
// reports as gone.
func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
