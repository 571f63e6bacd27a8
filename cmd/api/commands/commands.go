package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/taskmaster/todos/internal/adapters/repository"
	"github.com/taskmaster/todos/internal/application/services"
	"github.com/taskmaster/todos/internal/infrastructure/config"
	"github.com/taskmaster/todos/internal/infrastructure/database"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/infrastructure/metrics"
	"github.com/taskmaster/todos/internal/infrastructure/server"
	"github.com/taskmaster/todos/internal/ports"
)

// Version information, set through -ldflags at build time
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the todos API server",
		Long:  "Start the todos API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version) for the postgres and sqlite drivers",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			steps, _ := cmd.Flags().GetInt("steps")
			runMigration("up", steps)
		},
	}
	upCmd.Flags().Int("steps", 0, "Number of migrations to apply (0 applies all)")
	migrateCmd.AddCommand(upCmd)

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Run down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			steps, _ := cmd.Flags().GetInt("steps")
			runMigration("down", steps)
		},
	}
	downCmd.Flags().Int("steps", 0, "Number of migrations to revert (0 reverts all)")
	migrateCmd.AddCommand(downCmd)

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create owners of todos",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")

			if username == "" {
				log.Fatal("Username is required")
			}

			createUser(username, email)
		},
	}

	createUserCmd.Flags().String("username", "", "Username (required)")
	createUserCmd.Flags().String("email", "", "User email")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Todos %s\n", Version)
			fmt.Printf("Build Date: %s\n", BuildDate)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

// openStore returns the store for the configured driver. db is nil for the
// memory driver.
func openStore(cfg *config.Config) (ports.Store, *database.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return repository.NewMemoryStore(), nil, nil
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewSQLStore(db), db, nil
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	store, db, err := openStore(cfg)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err, "driver", cfg.Database.Driver)
	}
	if db != nil {
		defer db.Close()
	}

	srv, err := server.New(cfg, store, db, appLogger, metrics.New())
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting todos API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"driver", cfg.Database.Driver,
		"timezone", cfg.App.Timezone,
	)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
	}
}

func newMigrator(cfg *config.Config) (*migrate.Migrate, *database.DB) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Fatal("The memory driver has no schema to migrate")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var driver migratedb.Driver
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		driver, err = sqlite.WithInstance(db.DB.DB, &sqlite.Config{})
	default:
		driver, err = postgres.WithInstance(db.DB.DB, &postgres.Config{})
	}
	if err != nil {
		db.Close()
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		cfg.Database.MigrationsURL(),
		cfg.Database.Driver,
		driver,
	)
	if err != nil {
		db.Close()
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m, db
}

func runMigration(direction string, steps int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, db := newMigrator(cfg)
	defer db.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration failed: %v", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, db := newMigrator(cfg)
	defer db.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return
	}
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func createUser(username, email string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Database.Driver == config.DriverMemory {
		log.Fatal("Users created with the memory driver would not persist")
	}

	store, db, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	req := ports.CreateUserRequest{Username: username}
	if email != "" {
		req.Email = &email
	}

	if err := server.NewValidator().Validate(&req); err != nil {
		log.Fatalf("Invalid user: %v", err)
	}

	userService := services.NewUserService(store, logger.NewNop())
	user, err := userService.CreateUser(context.Background(), req)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Username: %s\n", user.Username)
	if user.Email != nil {
		fmt.Printf("  Email: %s\n", *user.Email)
	}
}
