// test/mock/memory.go
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
)

// InMemoryObjectRepository implements dao.ObjectRepository on a map,
// with the same ordering and pagination contract as the graph store.
type InMemoryObjectRepository struct {
	mu      sync.RWMutex
	objects map[string]*model.Object
}

func NewInMemoryObjectRepository() *InMemoryObjectRepository {
	return &InMemoryObjectRepository{objects: make(map[string]*model.Object)}
}

func (r *InMemoryObjectRepository) Save(ctx context.Context, obj *model.Object) (*model.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneObject(obj)
	r.objects[obj.ID.ID] = clone
	return cloneObject(clone), nil
}

func (r *InMemoryObjectRepository) FindByID(ctx context.Context, objectID string) (*model.Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[objectID]
	if !ok {
		return nil, ambient_errors.ErrObjectNotFound
	}
	return cloneObject(obj), nil
}

func (r *InMemoryObjectRepository) FindAll(ctx context.Context, filter model.ObjectFilter, page model.Page) ([]*model.Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Object, 0)
	for _, obj := range r.objects {
		if !matchesFilter(obj, filter) {
			continue
		}
		matched = append(matched, cloneObject(obj))
	}
	return pageOf(sortByCreation(matched), page), nil
}

func (r *InMemoryObjectRepository) FindChildren(ctx context.Context, parentID string, page model.Page) ([]*model.Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children := make([]*model.Object, 0)
	for _, obj := range r.objects {
		if obj.ParentID == parentID {
			children = append(children, cloneObject(obj))
		}
	}
	return pageOf(sortByCreation(children), page), nil
}

func (r *InMemoryObjectRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = make(map[string]*model.Object)
	return nil
}

// Count reports the stored object count; test inspection only.
func (r *InMemoryObjectRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

func matchesFilter(obj *model.Object, filter model.ObjectFilter) bool {
	if filter.Alias != "" && obj.Alias != filter.Alias {
		return false
	}
	if filter.AliasPattern != "" && !strings.Contains(obj.Alias, filter.AliasPattern) {
		return false
	}
	if filter.Type != "" && obj.Type != filter.Type {
		return false
	}
	if filter.Status != "" && obj.Status != filter.Status {
		return false
	}
	if filter.ParentID != "" && obj.ParentID != filter.ParentID {
		return false
	}
	return true
}

func sortByCreation(objects []*model.Object) []*model.Object {
	sort.SliceStable(objects, func(i, j int) bool {
		if !objects[i].CreationTimestamp.Equal(objects[j].CreationTimestamp) {
			return objects[i].CreationTimestamp.Before(objects[j].CreationTimestamp)
		}
		return objects[i].ID.ID < objects[j].ID.ID
	})
	return objects
}

func pageOf(objects []*model.Object, page model.Page) []*model.Object {
	if page.Size <= 0 {
		return []*model.Object{}
	}
	start := page.Offset()
	if start >= len(objects) {
		return []*model.Object{}
	}
	end := start + page.Size
	if end > len(objects) {
		end = len(objects)
	}
	return objects[start:end]
}

func cloneObject(obj *model.Object) *model.Object {
	clone := *obj
	if obj.Active != nil {
		active := *obj.Active
		clone.Active = &active
	}
	if obj.CreatedBy != nil {
		createdBy := *obj.CreatedBy
		clone.CreatedBy = &createdBy
	}
	if obj.Details != nil {
		details := make(map[string]interface{}, len(obj.Details))
		for k, v := range obj.Details {
			details[k] = v
		}
		clone.Details = details
	}
	return &clone
}

// InMemoryUserRepository implements dao.UserRepository on a map keyed by
// the canonical directory key.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*model.User)}
}

func (r *InMemoryUserRepository) Save(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID.Key()] = &clone
	saved := clone
	return &saved, nil
}

func (r *InMemoryUserRepository) FindByID(ctx context.Context, userKey string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userKey]
	if !ok {
		return nil, ambient_errors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) ExistsByID(ctx context.Context, userKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userKey]
	return ok, nil
}

func (r *InMemoryUserRepository) FindAll(ctx context.Context, page model.Page) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		users = append(users, &clone)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Username.Last != users[j].Username.Last {
			return users[i].Username.Last < users[j].Username.Last
		}
		if users[i].Username.First != users[j].Username.First {
			return users[i].Username.First < users[j].Username.First
		}
		return users[i].ID.Key() < users[j].ID.Key()
	})

	if page.Size <= 0 {
		return []*model.User{}, nil
	}
	start := page.Offset()
	if start >= len(users) {
		return []*model.User{}, nil
	}
	end := start + page.Size
	if end > len(users) {
		end = len(users)
	}
	return users[start:end], nil
}

func (r *InMemoryUserRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]*model.User)
	return nil
}

// InMemoryCommandRepository implements dao.CommandRepository, stamping ids
// and timestamps the way the graph store does.
type InMemoryCommandRepository struct {
	mu       sync.RWMutex
	commands []*model.Command
	SystemID string
}

func NewInMemoryCommandRepository(systemID string) *InMemoryCommandRepository {
	return &InMemoryCommandRepository{SystemID: systemID}
}

func (r *InMemoryCommandRepository) Save(ctx context.Context, cmd *model.Command) (*model.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *cmd
	if clone.ID == nil {
		clone.ID = &model.CommandID{SystemID: r.SystemID, ID: uuid.New().String()}
	}
	if clone.InvocationTimestamp.IsZero() {
		clone.InvocationTimestamp = time.Now()
	}
	r.commands = append(r.commands, &clone)
	saved := clone
	return &saved, nil
}

func (r *InMemoryCommandRepository) FindAll(ctx context.Context, page model.Page) ([]*model.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]*model.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		clone := *cmd
		commands = append(commands, &clone)
	}
	sort.SliceStable(commands, func(i, j int) bool {
		return commands[i].InvocationTimestamp.Before(commands[j].InvocationTimestamp)
	})

	if page.Size <= 0 {
		return []*model.Command{}, nil
	}
	start := page.Offset()
	if start >= len(commands) {
		return []*model.Command{}, nil
	}
	end := start + page.Size
	if end > len(commands) {
		end = len(commands)
	}
	return commands[start:end], nil
}

func (r *InMemoryCommandRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
	return nil
}

// Count reports the stored command count; test inspection only.
func (r *InMemoryCommandRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
