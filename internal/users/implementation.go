// internal/users/implementation.go
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/migueldrlds/bibliteK-sub000/pkg/eventstore"
)

var (
	// ErrUserNotFound means no user matches the id.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for any failed login, without
	// revealing which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when registration or login attempts
	// arrive faster than allowed.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// service implements the Service interface. Registration and login
// carry separate limiters so a burst of one cannot starve the other.
type service struct {
	db              *sql.DB
	journal         *eventstore.Journal
	logger          *zap.Logger
	registerLimiter *rate.Limiter
	loginLimiter    *rate.Limiter
}

// NewService creates a new users service instance.
func NewService(db *sql.DB, journal *eventstore.Journal, logger *zap.Logger) Service {
	return &service{
		db:              db,
		journal:         journal,
		logger:          logger,
		registerLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 requests per minute
		loginLimiter:    rate.NewLimiter(rate.Every(1*time.Minute), 5),
	}
}

// RegisterUser creates a new user with a hashed credential.
func (s *service) RegisterUser(ctx context.Context, email, name, password, campus string, role Role) (*User, error) {
	if !s.registerLimiter.Allow() {
		return nil, ErrRateLimited
	}

	id := uuid.New()
	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	change := UserRegisteredChange{ID: id, Email: email, Name: name, Role: role, Campus: campus}
	if err := s.journal.Append(ctx, id, "user", "UserRegistered", change, 0); err != nil {
		return nil, fmt.Errorf("journal user: %w", err)
	}

	user := &User{
		ID:      id,
		Email:   email,
		Name:    name,
		Role:    role,
		Campus:  campus,
		Status:  "active",
		Version: 1,
	}
	credential := &Credential{UserID: id, PasswordHash: passwordHash, Salt: salt}

	if err := s.insertUser(ctx, user, credential); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", id.String()),
		zap.String("role", string(role)),
		zap.String("campus", campus),
	)
	return user, nil
}

func (s *service) insertUser(ctx context.Context, user *User, credential *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, campus, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.Name, user.Role, user.Campus, user.Status, user.Version)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`, credential.UserID, credential.PasswordHash, credential.Salt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Authenticate verifies a user's credentials and returns the user if
// successful.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if !s.loginLimiter.Allow() {
		return nil, ErrRateLimited
	}

	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	credential, err := s.getCredential(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *service) getUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, campus, status, version
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Campus, &user.Status, &user.Version)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) getCredential(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	credential := &Credential{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, password_hash, salt
		FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&credential.UserID, &credential.PasswordHash, &credential.Salt)
	if err != nil {
		return nil, err
	}
	return credential, nil
}

// GetUser retrieves a user by id.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, campus, status, version, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Campus,
		&user.Status, &user.Version, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUserRole changes a user's role.
func (s *service) UpdateUserRole(ctx context.Context, id uuid.UUID, newRole Role) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	change := UserRoleChangedChange{ID: id, NewRole: newRole}
	if err := s.journal.Append(ctx, id, "user", "UserRoleChanged", change, user.Version); err != nil {
		return fmt.Errorf("journal role change: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE users
		SET role = $1, version = $2, updated_at = NOW()
		WHERE id = $3
	`, newRole, user.Version+1, id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}
