package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"clinic-scheduler/internal/database"

	"github.com/google/uuid"
)

const (
	userColumnsQuery       = "SELECT id, uuid, email, role, profile_id, name, phone FROM tb_user"
	findUserByUUIDQuery    = userColumnsQuery + " WHERE uuid = $1"
	findUserByEmailQuery   = userColumnsQuery + " WHERE email = $1"
	checkUserPasswordQuery = "SELECT password FROM tb_user WHERE email = $1"
)

// Repository looks the accounts up. Lookups return a nil user, not an error, when nothing
// matches.
type Repository interface {
	FindUserByUUID(ctx context.Context, id uuid.UUID) (*User, error)

	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// CheckUserPassword reports whether password matches the one stored for email. Unknown
	// emails never match.
	CheckUserPassword(ctx context.Context, email string, password string) (bool, error)
}

type defaultRepository struct {
	dbConn database.Connection
}

// NewRepository creates a new Repository backed by the tb_user table.
func NewRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) findUser(ctx context.Context, query string, arg string) (*User, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows, d.dbConn.Logger())
	if !rows.Next() {
		return nil, rows.Err()
	}
	user := new(User)
	if err = database.TransformRow(rows, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (d defaultRepository) FindUserByUUID(ctx context.Context, id uuid.UUID) (*User, error) {
	return d.findUser(ctx, findUserByUUIDQuery, id.String())
}

func (d defaultRepository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return d.findUser(ctx, findUserByEmailQuery, email)
}

func (d defaultRepository) CheckUserPassword(ctx context.Context, email string, password string) (bool, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	var hash string
	err := d.dbConn.DB().QueryRowContext(ctx, checkUserPasswordQuery, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return CheckPassword(hash, password)
}

// MemoryRepository keeps the users in memory, keyed by email. Passwords are stored hashed.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository creates a new MemoryRepository holding the given users.
func NewMemoryRepository(users ...User) *MemoryRepository {
	repository := &MemoryRepository{users: make(map[string]User, len(users))}
	for _, user := range users {
		repository.users[user.Email] = user
	}
	return repository
}

func (m *MemoryRepository) FindUserByUUID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.UUID == id {
			user.Password = ""
			return &user, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) FindUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, found := m.users[email]
	if !found {
		return nil, nil
	}
	user.Password = ""
	return &user, nil
}

func (m *MemoryRepository) CheckUserPassword(_ context.Context, email string, password string) (bool, error) {
	m.mu.RLock()
	user, found := m.users[email]
	m.mu.RUnlock()
	if !found {
		return false, nil
	}
	return CheckPassword(user.Password, password)
}
