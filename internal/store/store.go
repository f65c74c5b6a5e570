package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-allocation-backend/internal/model"
)

// Sentinel errors returned by store operations. Callers match them with
// errors.Is and translate to their own failure surface.
var (
	ErrHostelNotFound     = errors.New("store: hostel not found")
	ErrHostelFull         = errors.New("store: hostel full")
	ErrUserNotFound       = errors.New("store: user not found")
	ErrAllocationNotFound = errors.New("store: allocation not found")
)

// Store defines the persistence operations behind the allocation service.
type Store interface {
	// DB exposes the underlying connection for read-only listing queries.
	DB() *gorm.DB

	// Capacity ledger. Reserve and Release move a hostel's reserved counter
	// with single conditional updates.
	Reserve(ctx context.Context, hostelID int64) (remaining int, err error)
	Release(ctx context.Context, hostelID int64, count int) (remaining int, err error)

	// Allocation store. All mutations for a student are serialized so that at
	// most one allocation row per student survives any call.
	FindActive(ctx context.Context, studentID int64) (*model.Allocation, error)
	CreateIfAbsent(ctx context.Context, studentID, hostelID int64, roomNumber string) (*model.Allocation, bool, error)
	UpsertSingle(ctx context.Context, studentID, hostelID int64, roomNumber string) (*model.Allocation, int, error)
	DeleteForStudent(ctx context.Context, studentID int64) ([]model.Allocation, error)
	UpdateRoomNumber(ctx context.Context, allocationID int64, roomNumber string) (*model.Allocation, string, int, error)
	RoomNumbers(ctx context.Context, hostelID int64) ([]string, error)

	// Users
	GetUser(ctx context.Context, id int64) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error

	// Activity log, append-only.
	AppendActivity(ctx context.Context, userID int64, action, details string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB returns the underlying gorm connection.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// lockRows adds a row lock on dialects that support it. SQLite serializes
// writers on its own, and its SQL grammar has no FOR UPDATE.
func lockRows(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return tx
}
