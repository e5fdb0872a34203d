package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "dietfit",
	Short:         "Body metrics, silhouettes and the diet-and-fitness API from the terminal",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if os.Getenv("NO_COLOR") != "" {
			noColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(loginCmd, logoutCmd, signupCmd)
	rootCmd.AddCommand(meCmd, healthCmd)
	rootCmd.AddCommand(classifyCmd, silhouetteCmd, historyCmd)
	rootCmd.AddCommand(usersCmd, adminCmd)
	rootCmd.AddCommand(pantryCmd, ingredientsCmd, recipesCmd, planCmd, coachCmd)
	rootCmd.AddCommand(serveCmd, mcpCmd, statusCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler on stderr.
func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func versionString() string {
	return fmt.Sprintf("dietfit version %s", version)
}
