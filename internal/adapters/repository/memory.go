package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

// memoryState is the full data set of a MemoryStore.
type memoryState struct {
	todos  map[int64]*entities.Todo
	users  map[uuid.UUID]*entities.User
	nextID int64
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		todos:  make(map[int64]*entities.Todo, len(s.todos)),
		users:  make(map[uuid.UUID]*entities.User, len(s.users)),
		nextID: s.nextID,
	}
	for id, t := range s.todos {
		c.todos[id] = t.Clone()
	}
	for id, u := range s.users {
		c.users[id] = u.Clone()
	}
	return c
}

// MemoryStore is an in-process Store. Writes outside a transaction are
// applied immediately; WithinTransaction works on a copy that replaces the
// live state only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			todos:  make(map[int64]*entities.Todo),
			users:  make(map[uuid.UUID]*entities.User),
			nextID: 1,
		},
	}
}

func (s *MemoryStore) Todos() ports.TodoRepository {
	return &memoryTodoRepository{lock: s.locked, state: s.current}
}

func (s *MemoryStore) Users() ports.UserRepository {
	return &memoryUserRepository{lock: s.locked, state: s.current}
}

func (s *MemoryStore) current() *memoryState {
	return s.state
}

func (s *MemoryStore) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// WithinTransaction serializes fn against all other access to the store.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(tx ports.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &entities.StoreError{Op: "begin transaction", Err: err}
	}

	tx := &memoryTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// memoryTx is the store view handed to a transaction body. The store mutex
// is already held, so its repositories do not lock.
type memoryTx struct {
	state *memoryState
}

func noLock(fn func()) { fn() }

func (tx *memoryTx) Todos() ports.TodoRepository {
	return &memoryTodoRepository{lock: noLock, state: tx.current}
}

func (tx *memoryTx) Users() ports.UserRepository {
	return &memoryUserRepository{lock: noLock, state: tx.current}
}

func (tx *memoryTx) current() *memoryState {
	return tx.state
}

func (tx *memoryTx) WithinTransaction(ctx context.Context, fn func(tx ports.Store) error) error {
	return fn(tx)
}

type memoryTodoRepository struct {
	lock  func(func())
	state func() *memoryState
}

func (r *memoryTodoRepository) Create(ctx context.Context, todo *entities.Todo) error {
	r.lock(func() {
		st := r.state()
		todo.ID = st.nextID
		st.nextID++
		st.todos[todo.ID] = todo.Clone()
	})
	return nil
}

func (r *memoryTodoRepository) GetByID(ctx context.Context, scope ports.Scope, id int64) (*entities.Todo, error) {
	var found *entities.Todo
	r.lock(func() {
		if t, ok := r.state().todos[id]; ok && scope.Allows(t) {
			found = t.Clone()
		}
	})
	if found == nil {
		return nil, entities.ErrTodoNotFound
	}
	return found, nil
}

func (r *memoryTodoRepository) List(ctx context.Context, scope ports.Scope, filter ports.TodoFilter) ([]*entities.Todo, error) {
	var todos []*entities.Todo
	r.lock(func() {
		for _, t := range r.state().todos {
			if scope.Allows(t) && filter.Matches(t) {
				todos = append(todos, t.Clone())
			}
		}
	})

	sort.Slice(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if filter.Limit > 0 && len(todos) > filter.Limit {
		todos = todos[:filter.Limit]
	}
	return todos, nil
}

func (r *memoryTodoRepository) Update(ctx context.Context, scope ports.Scope, todo *entities.Todo) error {
	var err error
	r.lock(func() {
		st := r.state()
		existing, ok := st.todos[todo.ID]
		if !ok || !scope.Allows(existing) {
			err = entities.ErrTodoNotFound
			return
		}
		updated := todo.Clone()
		// created_at, owner and parent are immutable
		updated.CreatedAt = existing.CreatedAt
		updated.OwnerID = existing.OwnerID
		updated.ParentID = existing.ParentID
		st.todos[todo.ID] = updated
	})
	return err
}

func (r *memoryTodoRepository) Delete(ctx context.Context, scope ports.Scope, id int64) error {
	err := entities.ErrTodoNotFound
	r.lock(func() {
		st := r.state()
		if t, ok := st.todos[id]; ok && scope.Allows(t) {
			delete(st.todos, id)
			err = nil
		}
	})
	return err
}

func (r *memoryTodoRepository) Categories(ctx context.Context, scope ports.Scope) ([]string, error) {
	seen := make(map[string]struct{})
	r.lock(func() {
		for _, t := range r.state().todos {
			if scope.Allows(t) && t.Category != "" {
				seen[t.Category] = struct{}{}
			}
		}
	})

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

type memoryUserRepository struct {
	lock  func(func())
	state func() *memoryState
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entities.User) error {
	var err error
	r.lock(func() {
		st := r.state()
		for _, u := range st.users {
			if strings.EqualFold(u.Username, user.Username) {
				err = entities.ErrUsernameTaken
				return
			}
			if user.Email != nil && u.Email != nil && strings.EqualFold(*u.Email, *user.Email) {
				err = entities.ErrEmailTaken
				return
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		st.users[user.ID] = user.Clone()
	})
	return err
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var found *entities.User
	r.lock(func() {
		if u, ok := r.state().users[id]; ok {
			found = u.Clone()
		}
	})
	if found == nil {
		return nil, entities.ErrUserNotFound
	}
	return found, nil
}

func (r *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.Email != nil && strings.EqualFold(*u.Email, email) })
}

func (r *memoryUserRepository) find(match func(*entities.User) bool) (*entities.User, error) {
	var found *entities.User
	r.lock(func() {
		for _, u := range r.state().users {
			if match(u) {
				found = u.Clone()
				return
			}
		}
	})
	if found == nil {
		return nil, entities.ErrUserNotFound
	}
	return found, nil
}

func (r *memoryUserRepository) ListActive(ctx context.Context) ([]*entities.User, error) {
	var users []*entities.User
	r.lock(func() {
		for _, u := range r.state().users {
			if u.Active {
				users = append(users, u.Clone())
			}
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *memoryUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := entities.ErrUserNotFound
	r.lock(func() {
		if u, ok := r.state().users[id]; ok {
			u.LastLogin = &at
			err = nil
		}
	})
	return err
}

func (r *memoryUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := entities.ErrUserNotFound
	r.lock(func() {
		st := r.state()
		if _, ok := st.users[id]; !ok {
			return
		}
		delete(st.users, id)
		for todoID, t := range st.todos {
			if t.OwnerID != nil && *t.OwnerID == id {
				delete(st.todos, todoID)
			}
		}
		err = nil
	})
	return err
}
