package alloc

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/store"
)

// recorderNotifier captures dispatched student ids.
type recorderNotifier struct {
	ids []int64
}

func (r *recorderNotifier) Dispatch(studentID int64) {
	r.ids = append(r.ids, studentID)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Hostel{},
		&model.Allocation{},
		&model.ActivityLog{},
		&model.PushSubscription{},
	))
	return db
}

func seedHostel(t *testing.T, db *gorm.DB, name string, capacity int) *model.Hostel {
	t.Helper()
	hostel := model.Hostel{Name: name, Location: "Campus", Capacity: capacity}
	require.NoError(t, db.Create(&hostel).Error)
	return &hostel
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	user := model.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func remaining(t *testing.T, db *gorm.DB, hostelID int64) int {
	t.Helper()
	var hostel model.Hostel
	require.NoError(t, db.First(&hostel, hostelID).Error)
	return hostel.Remaining()
}

func allocationCount(t *testing.T, db *gorm.DB, studentID int64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Allocation{}).Where("student_id = ?", studentID).Count(&count).Error)
	return count
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	notifier := &recorderNotifier{}
	svc := NewService(store.NewGormStore(db), notifier)

	hostel := seedHostel(t, db, "North Hall", 1)
	amina := seedUser(t, db, "amina", model.RoleStudent)
	bakari := seedUser(t, db, "bakari", model.RoleStudent)

	allocation, err := svc.Apply(ctx, amina, hostel.ID)
	require.NoError(t, err)
	assert.Equal(t, "R001", allocation.RoomNumber)
	assert.Equal(t, 0, remaining(t, db, hostel.ID))
	assert.Equal(t, []int64{amina.ID}, notifier.ids)

	// A second application by the same student is rejected before the ledger
	// is touched.
	_, err = svc.Apply(ctx, amina, hostel.ID)
	assert.ErrorIs(t, err, ErrAlreadyAllocated)
	assert.Equal(t, 0, remaining(t, db, hostel.ID))

	_, err = svc.Apply(ctx, bakari, hostel.ID)
	assert.ErrorIs(t, err, store.ErrHostelFull)
	assert.EqualValues(t, 0, allocationCount(t, db, bakari.ID))

	_, err = svc.Apply(ctx, bakari, 9999)
	assert.ErrorIs(t, err, store.ErrHostelNotFound)

	var activities []model.ActivityLog
	require.NoError(t, db.Where("action = ?", "apply").Find(&activities).Error)
	assert.Len(t, activities, 1)
}

// gatedStore holds FindActive results until every expected caller has read
// one, forcing concurrent Apply calls past the duplicate check together.
type gatedStore struct {
	store.Store
	arrivals *sync.WaitGroup
}

func (g *gatedStore) FindActive(ctx context.Context, studentID int64) (*model.Allocation, error) {
	allocation, err := g.Store.FindActive(ctx, studentID)
	g.arrivals.Done()
	g.arrivals.Wait()
	return allocation, err
}

func TestApplyRacingSameStudentKeepsLedger(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	var arrivals sync.WaitGroup
	arrivals.Add(2)
	svc := NewService(&gatedStore{Store: store.NewGormStore(db), arrivals: &arrivals}, nil)

	hostel := seedHostel(t, db, "North Hall", 5)
	amina := seedUser(t, db, "amina", model.RoleStudent)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(ctx, amina, hostel.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// Both callers pass the duplicate check, so both reserve; the loser must
	// hand its reservation back.
	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyAllocated)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 1, allocationCount(t, db, amina.ID))
	assert.Equal(t, 4, remaining(t, db, hostel.ID))
}

func TestApplyAssignsSequentialRooms(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostel := seedHostel(t, db, "North Hall", 3)
	rooms := make([]string, 0, 3)
	for _, name := range []string{"amina", "bakari", "chiku"} {
		student := seedUser(t, db, name, model.RoleStudent)
		allocation, err := svc.Apply(ctx, student, hostel.ID)
		require.NoError(t, err)
		rooms = append(rooms, allocation.RoomNumber)
	}
	assert.Equal(t, []string{"R001", "R002", "R003"}, rooms)
}

func TestAdminAllocateMovesBetweenHostels(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostelA := seedHostel(t, db, "North Hall", 2)
	hostelB := seedHostel(t, db, "South Hall", 2)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	amina := seedUser(t, db, "amina", model.RoleStudent)

	_, err := svc.Apply(ctx, amina, hostelA.ID)
	require.NoError(t, err)
	require.Equal(t, 1, remaining(t, db, hostelA.ID))

	allocation, err := svc.AdminAllocate(ctx, admin, amina.ID, hostelB.ID, "")
	require.NoError(t, err)

	// Exactly one row, pointing at the second hostel; the first hostel's
	// room is credited back.
	assert.EqualValues(t, 1, allocationCount(t, db, amina.ID))
	assert.Equal(t, hostelB.ID, allocation.HostelID)
	assert.Equal(t, 2, remaining(t, db, hostelA.ID))
	assert.Equal(t, 1, remaining(t, db, hostelB.ID))
}

func TestAdminAllocateSameHostelMovesNoLedger(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostel := seedHostel(t, db, "North Hall", 1)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	amina := seedUser(t, db, "amina", model.RoleStudent)

	_, err := svc.Apply(ctx, amina, hostel.ID)
	require.NoError(t, err)
	require.Equal(t, 0, remaining(t, db, hostel.ID))

	// Reassigning a room within a full hostel must not fail or shift the
	// counter: the student already holds one of its rooms.
	allocation, err := svc.AdminAllocate(ctx, admin, amina.ID, hostel.ID, "R007")
	require.NoError(t, err)
	assert.Equal(t, "R007", allocation.RoomNumber)
	assert.Equal(t, 0, remaining(t, db, hostel.ID))
	assert.EqualValues(t, 1, allocationCount(t, db, amina.ID))
}

func TestAdminAllocateFullHostel(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostelA := seedHostel(t, db, "North Hall", 1)
	hostelB := seedHostel(t, db, "South Hall", 1)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	amina := seedUser(t, db, "amina", model.RoleStudent)
	bakari := seedUser(t, db, "bakari", model.RoleStudent)

	_, err := svc.Apply(ctx, amina, hostelA.ID)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, bakari, hostelB.ID)
	require.NoError(t, err)

	// Moving into a full hostel fails and leaves the prior allocation alone.
	_, err = svc.AdminAllocate(ctx, admin, amina.ID, hostelB.ID, "")
	assert.ErrorIs(t, err, store.ErrHostelFull)

	var row model.Allocation
	require.NoError(t, db.Where("student_id = ?", amina.ID).First(&row).Error)
	assert.Equal(t, hostelA.ID, row.HostelID)
	assert.Equal(t, 0, remaining(t, db, hostelA.ID))
}

func TestAdminAllocateUnknownStudent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostel := seedHostel(t, db, "North Hall", 1)
	admin := seedUser(t, db, "admin", model.RoleAdmin)

	_, err := svc.AdminAllocate(ctx, admin, 9999, hostel.ID, "")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Equal(t, 1, remaining(t, db, hostel.ID))
}

func TestDeleteUserReleasesRooms(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostel := seedHostel(t, db, "North Hall", 2)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	amina := seedUser(t, db, "amina", model.RoleStudent)

	_, err := svc.Apply(ctx, amina, hostel.ID)
	require.NoError(t, err)
	require.Equal(t, 1, remaining(t, db, hostel.ID))

	require.NoError(t, svc.DeleteUser(ctx, admin, amina.ID))

	assert.Equal(t, 2, remaining(t, db, hostel.ID))
	assert.EqualValues(t, 0, allocationCount(t, db, amina.ID))

	var count int64
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", amina.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, amina.ID), store.ErrUserNotFound)
}

func TestUpdateRoomNumber(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostel := seedHostel(t, db, "North Hall", 2)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	amina := seedUser(t, db, "amina", model.RoleStudent)

	allocation, err := svc.Apply(ctx, amina, hostel.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRoomNumber(ctx, admin, allocation.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateRoomNumber(ctx, admin, allocation.ID, "R042")
	require.NoError(t, err)
	assert.Equal(t, "R042", updated.RoomNumber)
	assert.Equal(t, allocation.ID, updated.ID)

	_, err = svc.UpdateRoomNumber(ctx, admin, 9999, "R001")
	assert.ErrorIs(t, err, store.ErrAllocationNotFound)
}

// Full lifecycle: a capacity-1 hostel fills, rejects the next applicant,
// frees up when its occupant is deleted, and accepts again.
func TestAllocationLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewService(store.NewGormStore(db), nil)

	hostel := seedHostel(t, db, "North Hall", 1)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	s1 := seedUser(t, db, "amina", model.RoleStudent)
	s2 := seedUser(t, db, "bakari", model.RoleStudent)

	allocation, err := svc.Apply(ctx, s1, hostel.ID)
	require.NoError(t, err)
	assert.Equal(t, "R001", allocation.RoomNumber)
	assert.Equal(t, 0, remaining(t, db, hostel.ID))

	_, err = svc.Apply(ctx, s2, hostel.ID)
	assert.ErrorIs(t, err, store.ErrHostelFull)

	require.NoError(t, svc.DeleteUser(ctx, admin, s1.ID))
	assert.Equal(t, 1, remaining(t, db, hostel.ID))
	assert.EqualValues(t, 0, allocationCount(t, db, s1.ID))

	allocation, err = svc.Apply(ctx, s2, hostel.ID)
	require.NoError(t, err)
	assert.Equal(t, hostel.ID, allocation.HostelID)
	assert.Equal(t, 0, remaining(t, db, hostel.ID))
}
