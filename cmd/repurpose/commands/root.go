package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suteetoe/repurpose/pkg/config"
	"github.com/suteetoe/repurpose/pkg/logger"
	"go.uber.org/zap"
)

const serviceName = "repurpose"

// set at build time with -ldflags "-X .../commands.version=..."
var version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "repurpose",
	Short: "Content repurposing API",
	Long: `Turns one piece of long-form content into platform-ready posts
for Twitter, LinkedIn, Instagram, Facebook, TikTok, email and summaries.

Configuration is read from a .env file and the environment.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and starts the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger.GetLogger(), nil
}
