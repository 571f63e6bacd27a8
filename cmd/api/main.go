package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/todos/cmd/api/commands"
)

// @title Todos API
// @version 1.0
// @description Todo lifecycle with recurring todos, activity history and analytics

// @contact.name TaskMaster Support
// @contact.url https://github.com/taskmaster/todos

// @license.name MIT
// @license.url https://github.com/taskmaster/todos/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Optional. Type "Bearer" followed by a space and the token from /auth/token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskmaster",
		Short: "Todos API Server",
		Long:  `Todos is a todo backend with priorities, due dates, recurring todos, per-day activity history and analytics.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
