package alloc

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/roomnum"
	"hostel-allocation-backend/internal/store"
)

// Notifier receives the ids of students whose allocation changed. Dispatch
// must not block beyond a buffered channel send.
type Notifier interface {
	Dispatch(studentID int64)
}

// Service orchestrates the capacity ledger, the room number assigner, and the
// allocation store. Each student moves between exactly two states: unallocated
// and allocated.
type Service struct {
	store    store.Store
	notifier Notifier
}

// NewService creates an allocation service. notifier may be nil.
func NewService(s store.Store, notifier Notifier) *Service {
	return &Service{store: s, notifier: notifier}
}

// Apply is the student self-service path. It fails when the student already
// holds a room or the hostel is full, and leaves no trace when it fails: a
// reservation taken before a failed write is released again.
func (svc *Service) Apply(ctx context.Context, student *model.User, hostelID int64) (*model.Allocation, error) {
	existing, err := svc.store.FindActive(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyAllocated
	}

	if _, err := svc.store.Reserve(ctx, hostelID); err != nil {
		return nil, err
	}

	room, err := svc.nextRoom(ctx, hostelID)
	if err != nil {
		svc.releaseQuietly(ctx, hostelID, student.ID)
		return nil, err
	}

	allocation, created, err := svc.store.CreateIfAbsent(ctx, student.ID, hostelID, room)
	if err != nil {
		svc.releaseQuietly(ctx, hostelID, student.ID)
		return nil, err
	}
	if !created {
		// A concurrent request for the same student created the row first;
		// this reservation is handed back.
		svc.releaseQuietly(ctx, hostelID, student.ID)
		return nil, ErrAlreadyAllocated
	}

	svc.logActivity(ctx, student.ID, "apply",
		fmt.Sprintf("applied for hostel %d, assigned room %s", hostelID, room))
	svc.notify(student.ID)
	return allocation, nil
}

// AdminAllocate is the override path: it replaces whatever allocation the
// student holds. The ledger stays in sync: moving to a different hostel
// reserves there first (failing with full/not-found before any store
// mutation) and releases the old hostel after the row has moved. A
// re-allocation within the same hostel moves no ledger counters.
func (svc *Service) AdminAllocate(ctx context.Context, actor *model.User, studentID, hostelID int64, room string) (*model.Allocation, error) {
	student, err := svc.store.GetUser(ctx, studentID)
	if err != nil {
		return nil, err
	}

	prior, err := svc.store.FindActive(ctx, studentID)
	if err != nil {
		return nil, err
	}

	moving := prior == nil || prior.HostelID != hostelID
	if moving {
		if _, err := svc.store.Reserve(ctx, hostelID); err != nil {
			return nil, err
		}
	}

	room = strings.TrimSpace(room)
	if room == "" {
		room, err = svc.nextRoom(ctx, hostelID)
		if err != nil {
			if moving {
				svc.releaseQuietly(ctx, hostelID, studentID)
			}
			return nil, err
		}
	}

	allocation, removed, err := svc.store.UpsertSingle(ctx, studentID, hostelID, room)
	if err != nil {
		if moving {
			svc.releaseQuietly(ctx, hostelID, studentID)
		}
		return nil, err
	}

	if moving && prior != nil {
		if _, err := svc.store.Release(ctx, prior.HostelID, 1); err != nil {
			log.Printf("release hostel %d after moving student %d: %v", prior.HostelID, studentID, err)
		}
	}

	svc.logActivity(ctx, actor.ID, "allocate",
		fmt.Sprintf("allocated %s to hostel %d, room %s (%d duplicate rows removed)",
			student.Username, hostelID, room, removed))
	svc.notify(studentID)
	return allocation, nil
}

// DeleteUser releases every room the user holds, removes the allocation rows,
// and deletes the account. Each removed row credits its hostel exactly once.
func (svc *Service) DeleteUser(ctx context.Context, actor *model.User, userID int64) error {
	user, err := svc.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	rows, err := svc.store.DeleteForStudent(ctx, userID)
	if err != nil {
		return err
	}

	released := 0
	for _, row := range rows {
		if _, err := svc.store.Release(ctx, row.HostelID, 1); err != nil {
			log.Printf("release hostel %d for deleted user %d: %v", row.HostelID, userID, err)
			continue
		}
		released++
	}

	if err := svc.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	svc.logActivity(ctx, actor.ID, "allocate",
		fmt.Sprintf("deleted user %s, released %d rooms", user.Username, released))
	return nil
}

// UpdateRoomNumber changes one allocation's room label in place, repairing any
// duplicate rows found for the same student.
func (svc *Service) UpdateRoomNumber(ctx context.Context, actor *model.User, allocationID int64, room string) (*model.Allocation, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return nil, fmt.Errorf("%w: room number must not be empty", ErrValidation)
	}

	allocation, before, removed, err := svc.store.UpdateRoomNumber(ctx, allocationID, room)
	if err != nil {
		return nil, err
	}

	svc.logActivity(ctx, actor.ID, "allocate",
		fmt.Sprintf("changed room for allocation %d from %s to %s (%d duplicate rows removed)",
			allocationID, before, room, removed))
	svc.notify(allocation.StudentID)
	return allocation, nil
}

func (svc *Service) nextRoom(ctx context.Context, hostelID int64) (string, error) {
	labels, err := svc.store.RoomNumbers(ctx, hostelID)
	if err != nil {
		return "", err
	}
	return roomnum.Next(labels), nil
}

// releaseQuietly undoes a reservation after a failed write. The original
// failure is what the caller sees; a failed release is only logged.
func (svc *Service) releaseQuietly(ctx context.Context, hostelID, studentID int64) {
	if _, err := svc.store.Release(ctx, hostelID, 1); err != nil {
		log.Printf("release hostel %d after failed write for student %d: %v", hostelID, studentID, err)
	}
}

// logActivity appends an audit entry. Audit failures never fail the operation
// they describe.
func (svc *Service) logActivity(ctx context.Context, userID int64, action, details string) {
	if err := svc.store.AppendActivity(ctx, userID, action, details); err != nil {
		log.Printf("append activity log: %v", err)
	}
}

func (svc *Service) notify(studentID int64) {
	if svc.notifier != nil {
		svc.notifier.Dispatch(studentID)
	}
}
