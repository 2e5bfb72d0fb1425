// Package cli implements the coursechat commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"coursechat/internal/app"
	"coursechat/internal/config"
	"coursechat/internal/logger"
)

var cfgPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "coursechat",
	Short: "Course and instructor assistant",
	Long:  "Answers questions about a course catalog with retrieval-augmented generation. Serves a JSON API or runs in the terminal.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file (default: ./config.yaml or ~/.config/coursechat/config.yaml)")
}

// loadConfig reads .env, the config file and environment overrides, then
// configures logging from the result.
func loadConfig() (*config.AppConfig, error) {
	_ = godotenv.Load()

	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if cfgPath == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
		path = cfgPath
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	logger.Debug("config loaded", "path", path)
	return cfg, nil
}

func buildApp(ctx context.Context) *app.App {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	a, err := app.Build(ctx, cfg)
	if err != nil {
		exitErr("startup", err)
	}
	return a
}

// fatal is swapped in tests.
var fatal = logger.Fatal

// exitErr closes closers, which deferred calls would skip on exit, and then
// exits through the logger.
func exitErr(msg string, err error, closers ...io.Closer) {
	for _, c := range closers {
		if cerr := c.Close(); cerr != nil {
			logger.Warn("close failed", "err", cerr)
		}
	}
	fatal(msg+" failed", "err", err)
}
