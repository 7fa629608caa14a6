package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storerating/rating-platform/internal/core/domain"
)

func newUser(id, email string, createdAt time.Time) *domain.User {
	return &domain.User{
		ID:           id,
		Name:         "User " + id,
		Email:        email,
		Address:      "addr",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newUser("u1", "a@x.com", now)))

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "email lookup is case-sensitive")

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newUser("u1", "a@x.com", time.Now())))

	u, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	u.Role = domain.RoleAdmin

	again, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("u1", "dup@x.com", time.Now())))
	err := repo.Create(ctx, newUser("u2", "dup@x.com", time.Now()))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepository_ConcurrentDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const workers = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, newUser(fmt.Sprintf("u%d", i), "race@x.com", time.Now()))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == domain.ErrDuplicateEmail:
				duplicates++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newUser("old", "old@x.com", base)))
	require.NoError(t, repo.Create(ctx, newUser("new", "new@x.com", base.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newUser("mid", "mid@x.com", base.Add(time.Hour))))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{users[0].ID, users[1].ID, users[2].ID})
}

func TestUserRepository_Updates(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	require.NoError(t, repo.Create(ctx, newUser("u1", "a@x.com", created)))

	require.NoError(t, repo.UpdateRole(ctx, "u1", domain.RoleStoreOwner, later))
	require.NoError(t, repo.UpdatePassword(ctx, "u1", "new-hash", later))

	u, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStoreOwner, u.Role)
	assert.Equal(t, "new-hash", u.PasswordHash)
	assert.Equal(t, later, u.UpdatedAt)
	assert.Equal(t, created, u.CreatedAt)

	assert.ErrorIs(t, repo.UpdateRole(ctx, "nope", domain.RoleAdmin, later), domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "nope", "h", later), domain.ErrUserNotFound)
}
