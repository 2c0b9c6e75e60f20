package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// MemoryRepository keeps users in process memory. The mutex makes each
// operation atomic, which is all the uniqueness invariant needs.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	byName  map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName:  make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return nil, fmt.Errorf("%w: username is taken", common.ErrorAlreadyExists)
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, fmt.Errorf("%w: email is taken", common.ErrorAlreadyExists)
	}

	r.nextID++
	now := r.now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byName[user.UserName] = clone(user)
	r.byEmail[user.Email] = user.UserName

	return user, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byName[name]), nil
}

// LockByUsername is GetByUsername; memory storage has no row locks.
func (r *MemoryRepository) LockByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.GetByUsername(ctx, username)
}

func (r *MemoryRepository) Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}

	if patch.Email != nil && *patch.Email != stored.Email {
		if _, taken := r.byEmail[*patch.Email]; taken {
			return nil, fmt.Errorf("%w: email is taken", common.ErrorAlreadyExists)
		}
		delete(r.byEmail, stored.Email)
		r.byEmail[*patch.Email] = username
		stored.Email = *patch.Email
	}
	if patch.FirstName != nil {
		stored.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		stored.LastName = *patch.LastName
	}
	if patch.Active != nil {
		stored.Active = *patch.Active
	}
	if patch.PasswordHash != nil {
		stored.PasswordHash = *patch.PasswordHash
	}
	stored.UpdatedAt = r.now()

	return clone(stored), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byName[username]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byEmail, stored.Email)
	delete(r.byName, username)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.User, 0, len(r.byName))
	for _, u := range r.byName {
		result = append(result, clone(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
