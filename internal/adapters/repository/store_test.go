package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/config"
	"github.com/taskmaster/todos/internal/infrastructure/database"
	"github.com/taskmaster/todos/internal/ports"
)

var base = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()

	db, err := database.New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "todos.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "sqlite", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.DB.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return NewSQLStore(db)
}

func storesUnderTest(t *testing.T) map[string]func(t *testing.T) ports.Store {
	return map[string]func(t *testing.T) ports.Store{
		"memory": func(t *testing.T) ports.Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) ports.Store { return newSQLiteStore(t) },
	}
}

func newTodo(text string, priority entities.Priority, createdAt time.Time) *entities.Todo {
	return &entities.Todo{
		Text:       text,
		CreatedAt:  createdAt,
		Category:   entities.DefaultCategory,
		Priority:   priority,
		Recurrence: entities.RecurrenceNone,
	}
}

func mustCreateTodo(t *testing.T, store ports.Store, todo *entities.Todo) *entities.Todo {
	t.Helper()
	if err := store.Todos().Create(context.Background(), todo); err != nil {
		t.Fatalf("create todo %q: %v", todo.Text, err)
	}
	return todo
}

func TestTodoRepository(t *testing.T) {
	for name, open := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			all := ports.Scope{}

			low := mustCreateTodo(t, store, newTodo("low", entities.PriorityLow, base))
			high := mustCreateTodo(t, store, newTodo("high", entities.PriorityHigh, base.Add(time.Minute)))
			due := base.Add(48 * time.Hour)
			medium := newTodo("medium", entities.PriorityMedium, base.Add(2*time.Minute))
			medium.Category = "Work"
			medium.DueAt = &due
			medium.Recurrence = entities.RecurrenceWeekly
			medium.ParentID = &low.ID
			mustCreateTodo(t, store, medium)

			if low.ID == 0 || high.ID == low.ID || medium.ID == high.ID {
				t.Fatalf("ids not assigned: %d %d %d", low.ID, high.ID, medium.ID)
			}

			got, err := store.Todos().GetByID(ctx, all, medium.ID)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if got.Text != "medium" || got.Category != "Work" || got.Recurrence != entities.RecurrenceWeekly {
				t.Errorf("unexpected todo: %+v", got)
			}
			if got.DueAt == nil || !got.DueAt.Equal(due) {
				t.Errorf("due_at = %v, want %v", got.DueAt, due)
			}
			if got.ParentID == nil || *got.ParentID != low.ID {
				t.Errorf("parent_id = %v, want %d", got.ParentID, low.ID)
			}
			if !got.CreatedAt.Equal(medium.CreatedAt) {
				t.Errorf("created_at = %v, want %v", got.CreatedAt, medium.CreatedAt)
			}

			list, err := store.Todos().List(ctx, all, ports.TodoFilter{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var order []string
			for _, todo := range list {
				order = append(order, todo.Text)
			}
			if len(order) != 3 || order[0] != "high" || order[1] != "medium" || order[2] != "low" {
				t.Errorf("order = %v, want [high medium low]", order)
			}

			after := base.Add(24 * time.Hour)
			filtered, err := store.Todos().List(ctx, all, ports.TodoFilter{DueAfter: &after, RecurringOnly: true})
			if err != nil {
				t.Fatalf("List(filter) error = %v", err)
			}
			if len(filtered) != 1 || filtered[0].ID != medium.ID {
				t.Errorf("filtered = %+v, want only medium", filtered)
			}

			limited, err := store.Todos().List(ctx, all, ports.TodoFilter{Limit: 2})
			if err != nil {
				t.Fatalf("List(limit) error = %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("limited = %d, want 2", len(limited))
			}

			completedAt := base.Add(time.Hour)
			got.Completed = true
			got.CompletedAt = &completedAt
			got.Text = "medium done"
			if err := store.Todos().Update(ctx, all, got); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			updated, err := store.Todos().GetByID(ctx, all, medium.ID)
			if err != nil {
				t.Fatalf("GetByID() after update error = %v", err)
			}
			if !updated.Completed || updated.CompletedAt == nil || !updated.CompletedAt.Equal(completedAt) || updated.Text != "medium done" {
				t.Errorf("update not persisted: %+v", updated)
			}

			completed := true
			done, err := store.Todos().List(ctx, all, ports.TodoFilter{Completed: &completed})
			if err != nil {
				t.Fatalf("List(completed) error = %v", err)
			}
			if len(done) != 1 {
				t.Errorf("completed todos = %d, want 1", len(done))
			}

			categories, err := store.Todos().Categories(ctx, all)
			if err != nil {
				t.Fatalf("Categories() error = %v", err)
			}
			if len(categories) != 2 || categories[0] != "General" || categories[1] != "Work" {
				t.Errorf("categories = %v, want [General Work]", categories)
			}

			if err := store.Todos().Delete(ctx, all, low.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Todos().GetByID(ctx, all, low.ID); !errors.Is(err, entities.ErrTodoNotFound) {
				t.Errorf("GetByID() after delete error = %v, want ErrTodoNotFound", err)
			}
			if err := store.Todos().Delete(ctx, all, low.ID); !errors.Is(err, entities.ErrTodoNotFound) {
				t.Errorf("second Delete() error = %v, want ErrTodoNotFound", err)
			}

			missing := newTodo("ghost", entities.PriorityLow, base)
			missing.ID = 9999
			if err := store.Todos().Update(ctx, all, missing); !errors.Is(err, entities.ErrTodoNotFound) {
				t.Errorf("Update(missing) error = %v, want ErrTodoNotFound", err)
			}
		})
	}
}

func TestOwnerScope(t *testing.T) {
	for name, open := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			alice := &entities.User{ID: uuid.New(), Username: "alice", CreatedAt: base, Active: true}
			bob := &entities.User{ID: uuid.New(), Username: "bob", CreatedAt: base, Active: true}
			for _, u := range []*entities.User{alice, bob} {
				if err := store.Users().Create(ctx, u); err != nil {
					t.Fatalf("create user: %v", err)
				}
			}

			alicesTodo := newTodo("alice's", entities.PriorityMedium, base)
			alicesTodo.OwnerID = &alice.ID
			mustCreateTodo(t, store, alicesTodo)

			bobsTodo := newTodo("bob's", entities.PriorityMedium, base)
			bobsTodo.OwnerID = &bob.ID
			mustCreateTodo(t, store, bobsTodo)

			aliceScope := ports.Scope{OwnerID: &alice.ID}
			list, err := store.Todos().List(ctx, aliceScope, ports.TodoFilter{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list) != 1 || list[0].ID != alicesTodo.ID {
				t.Errorf("alice sees %+v", list)
			}

			if _, err := store.Todos().GetByID(ctx, aliceScope, bobsTodo.ID); !errors.Is(err, entities.ErrTodoNotFound) {
				t.Errorf("cross-owner GetByID() error = %v, want ErrTodoNotFound", err)
			}
			if err := store.Todos().Delete(ctx, aliceScope, bobsTodo.ID); !errors.Is(err, entities.ErrTodoNotFound) {
				t.Errorf("cross-owner Delete() error = %v, want ErrTodoNotFound", err)
			}

			err = store.WithinTransaction(ctx, func(tx ports.Store) error {
				return tx.Users().Delete(ctx, bob.ID)
			})
			if err != nil {
				t.Fatalf("delete user: %v", err)
			}

			remaining, err := store.Todos().List(ctx, ports.Scope{}, ports.TodoFilter{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(remaining) != 1 || remaining[0].ID != alicesTodo.ID {
				t.Errorf("bob's todos should be gone, remaining %+v", remaining)
			}
		})
	}
}

func TestUserRepository(t *testing.T) {
	for name, open := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			email := "carol@example.com"
			carol := &entities.User{ID: uuid.New(), Username: "carol", Email: &email, CreatedAt: base, Active: true}
			if err := store.Users().Create(ctx, carol); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			dupName := &entities.User{ID: uuid.New(), Username: "carol", CreatedAt: base, Active: true}
			if err := store.Users().Create(ctx, dupName); !errors.Is(err, entities.ErrUsernameTaken) {
				t.Errorf("duplicate username error = %v, want ErrUsernameTaken", err)
			}

			dupEmail := &entities.User{ID: uuid.New(), Username: "dave", Email: &email, CreatedAt: base, Active: true}
			if err := store.Users().Create(ctx, dupEmail); !errors.Is(err, entities.ErrEmailTaken) {
				t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
			}

			byName, err := store.Users().GetByUsername(ctx, "CAROL")
			if err != nil || byName.ID != carol.ID {
				t.Fatalf("GetByUsername() = %v, %v", byName, err)
			}

			byEmail, err := store.Users().GetByEmail(ctx, "Carol@Example.com")
			if err != nil || byEmail.ID != carol.ID {
				t.Fatalf("GetByEmail() = %v, %v", byEmail, err)
			}

			login := base.Add(time.Hour)
			if err := store.Users().UpdateLastLogin(ctx, carol.ID, login); err != nil {
				t.Fatalf("UpdateLastLogin() error = %v", err)
			}
			got, err := store.Users().GetByID(ctx, carol.ID)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if got.LastLogin == nil || !got.LastLogin.Equal(login) || !got.Active {
				t.Errorf("unexpected user: %+v", got)
			}

			users, err := store.Users().ListActive(ctx)
			if err != nil || len(users) != 1 {
				t.Fatalf("ListActive() = %v, %v", users, err)
			}

			if _, err := store.Users().GetByID(ctx, uuid.New()); !errors.Is(err, entities.ErrUserNotFound) {
				t.Errorf("GetByID(unknown) error = %v, want ErrUserNotFound", err)
			}
			if err := store.Users().Delete(ctx, uuid.New()); !errors.Is(err, entities.ErrUserNotFound) {
				t.Errorf("Delete(unknown) error = %v, want ErrUserNotFound", err)
			}
		})
	}
}

func TestWithinTransactionRollsBack(t *testing.T) {
	for name, open := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			boom := errors.New("boom")

			err := store.WithinTransaction(ctx, func(tx ports.Store) error {
				if err := tx.Todos().Create(ctx, newTodo("doomed", entities.PriorityMedium, base)); err != nil {
					return err
				}
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("WithinTransaction() error = %v, want boom", err)
			}

			list, err := store.Todos().List(ctx, ports.Scope{}, ports.TodoFilter{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list) != 0 {
				t.Errorf("rolled back todo is visible: %+v", list)
			}

			err = store.WithinTransaction(ctx, func(tx ports.Store) error {
				return tx.Todos().Create(ctx, newTodo("kept", entities.PriorityMedium, base))
			})
			if err != nil {
				t.Fatalf("WithinTransaction() error = %v", err)
			}
			list, _ = store.Todos().List(ctx, ports.Scope{}, ports.TodoFilter{})
			if len(list) != 1 {
				t.Errorf("committed todos = %d, want 1", len(list))
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	todo := mustCreateTodo(t, store, newTodo("original", entities.PriorityMedium, base))

	got, err := store.Todos().GetByID(context.Background(), ports.Scope{}, todo.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	got.Text = "mutated"

	again, _ := store.Todos().GetByID(context.Background(), ports.Scope{}, todo.ID)
	if again.Text != "original" {
		t.Errorf("store state leaked through a returned pointer: %q", again.Text)
	}
}
