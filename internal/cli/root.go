package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studyhub-client/internal/config"
)

type rootOptions struct {
	configPath string
	apiURL     string
}

// Execute runs the CLI. An interrupt cancels the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	envConfig := os.Getenv(config.EnvConfig)
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "studyhub",
		Short:        "Terminal client for the StudyHub quiz and summary service",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "API base URL (overrides config and "+config.EnvAPIURL+")")

	cmd.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newDashboardCmd(opts),
		newQuizCmd(opts),
		newSummaryCmd(opts),
		NewMigrateCmd(&opts.configPath),
	)
	return cmd
}
