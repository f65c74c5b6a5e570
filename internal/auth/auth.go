package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/model"
)

var (
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, so the two cases cannot be told apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("auth: username already taken")
	// ErrWeakPassword is returned when the password is shorter than 8 characters.
	ErrWeakPassword = errors.New("auth: password too short")
	// ErrValidation is returned for missing required fields.
	ErrValidation = errors.New("auth: invalid input")
)

const minPasswordLen = 8

// Service implements session-cookie authentication backed by the database.
type Service struct {
	db  *gorm.DB
	cfg config.SessionConfig
}

// NewService creates an auth service.
func NewService(db *gorm.DB, cfg config.SessionConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

// CookieName returns the configured session cookie name.
func (s *Service) CookieName() string {
	return s.cfg.CookieName
}

// Secure reports whether session cookies require HTTPS.
func (s *Service) Secure() bool {
	return s.cfg.Secure
}

// TTL returns the configured session lifetime.
func (s *Service) TTL() time.Duration {
	return s.cfg.TTL
}

// Register creates a student account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, firstName, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     username,
		FirstName:    strings.TrimSpace(firstName),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return &user, nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user %q: %w", username, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// StartSession issues a session token for the user.
func (s *Service) StartSession(ctx context.Context, user *model.User) (*model.Session, error) {
	session := model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.TTL),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// EndSession revokes the session token. Unknown tokens are not an error.
func (s *Service) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&model.Session{Token: token}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserForToken resolves a session token to its user. Expired sessions are
// removed on sight and resolve to nil.
func (s *Service) UserForToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	var session model.Session
	err := s.db.WithContext(ctx).Preload("User").First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if session.Expired(time.Now().UTC()) {
		if err := s.db.WithContext(ctx).Delete(&model.Session{Token: token}).Error; err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil
	}
	user := session.User
	return &user, nil
}
