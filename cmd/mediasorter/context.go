package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"mediasorter/internal/config"
	"mediasorter/internal/history"
	"mediasorter/internal/logging"
	"mediasorter/internal/sorter"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// openHistory returns nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// session bundles what a sorting command needs. close releases all of it.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *sorter.Engine
	close  func()
}

func (c *commandContext) newSession(opts ...sorter.Option) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	resolver, closeResolver, err := sorter.NewResolver(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := c.openHistory()
	if err != nil {
		_ = closeResolver()
		return nil, err
	}
	cleanup := func() {
		if err := closeResolver(); err != nil {
			logger.Warn("failed to close metadata clients", logging.Error(err))
		}
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history", logging.Error(err))
			}
		}
	}

	base := []sorter.Option{sorter.WithLogger(logger)}
	if store != nil {
		base = append(base, sorter.WithHistory(store))
	}
	engine, err := sorter.New(cfg, resolver, append(base, opts...)...)
	if err != nil {
		cleanup()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, engine: engine, close: cleanup}, nil
}

// offlineEngine builds an engine without providers or history, for commands
// that never look anything up.
func (c *commandContext) offlineEngine() (*sorter.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return sorter.New(cfg, nil)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
