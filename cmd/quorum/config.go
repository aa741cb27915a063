package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	quorum "github.com/quorumlabs/quorum"
	"github.com/quorumlabs/quorum/internal/logging"
	"github.com/quorumlabs/quorum/internal/server"
	"github.com/quorumlabs/quorum/pkg/adapters/file"
	httpadapter "github.com/quorumlabs/quorum/pkg/adapters/http"
	"github.com/quorumlabs/quorum/pkg/adapters/memory"
	redisadapter "github.com/quorumlabs/quorum/pkg/adapters/redis"
	"github.com/quorumlabs/quorum/pkg/flight"
	"github.com/quorumlabs/quorum/pkg/ports"
)

// Config is the CLI configuration, loaded from YAML with flag
// overrides.
type Config struct {
	Endpoint    string `yaml:"endpoint"`
	Token       string `yaml:"token"`
	Workflow    string `yaml:"workflow"`
	WorkflowDir string `yaml:"workflow_dir"`
	Redis       struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

func defaultConfig() Config {
	return Config{
		Endpoint: "http://localhost:8080",
		Workflow: "deliberate-v1",
	}
}

// loadConfig reads the config file (explicit path, or
// ~/.config/quorum/config.yaml when present) and applies flag
// overrides.
func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg := defaultConfig()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".config", "quorum", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// workflowLoader builds the workflow source: a directory of definitions
// when configured, the built-in workflow otherwise.
func workflowLoader(cfg Config) (ports.WorkflowLoader, error) {
	if cfg.WorkflowDir != "" {
		return file.NewLoader(cfg.WorkflowDir)
	}
	return memory.NewFromWorkflows(server.DefaultWorkflow())
}

// buildClient wires the engine from config: HTTP transport, optional
// Redis persistence and distributed send lock, workflow definitions.
func buildClient(cmd *cobra.Command, cfg Config, logger *slog.Logger) (*quorum.Client, error) {
	transport, err := httpadapter.NewClient(cfg.Endpoint, httpadapter.WithToken(cfg.Token))
	if err != nil {
		return nil, err
	}

	workflows, err := workflowLoader(cfg)
	if err != nil {
		return nil, err
	}

	opts := []quorum.Option{
		quorum.WithLogger(logger),
		quorum.WithWorkflows(workflows),
	}

	if cfg.Redis.Addr != "" {
		store := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		locker := redisadapter.NewLocker(store.Client(), "quorum:")
		opts = append(opts,
			quorum.WithStore(store),
			quorum.WithFlightManager(flight.NewManager(
				flight.WithLocker(locker),
				flight.WithLogger(logger),
			)),
		)
	}

	return quorum.New(transport, opts...)
}
