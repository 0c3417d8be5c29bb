package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

type memoryRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]*User{}, nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, u User) (int64, error) {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return 0, fmt.Errorf("%w: username already taken", shared.ErrConflict)
		}
	}
	id := m.nextID
	m.nextID++
	u.ID = id
	u.IsActive = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[id] = &u
	return id, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["full_name"]; ok {
		u.FullName = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		u.IsActive = v.(bool)
	}
	if v, ok := updates["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "salesrep",
		FullName: "Sales Rep",
		Password: "correct horse",
	}, 1)
	require.NoError(t, err)

	stored, err := repo.GetByUsername(context.Background(), "salesrep")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
	require.True(t, u.IsActive)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Username: "admin", FullName: "Admin", Password: "swordfish1"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserRequest{Username: "admin", FullName: "Other", Password: "swordfish2"}, 1)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateUserPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserRequest{Username: "ops", FullName: "Ops", Password: "first pass"}, 1)
	require.NoError(t, err)
	oldHash := repo.users[u.ID].PasswordHash

	next := "second pass"
	_, err = svc.Update(ctx, u.ID, UpdateUserRequest{Password: &next}, 1)
	require.NoError(t, err)

	newHash := repo.users[u.ID].PasswordHash
	require.NotEqual(t, oldHash, newHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte(next)))
}

func TestDeactivateUser(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserRequest{Username: "temp", FullName: "Temp", Password: "temporary1"}, 1)
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, u.ID, UpdateUserRequest{IsActive: &inactive}, 1)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
}
