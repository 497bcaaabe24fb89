package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"notifer/internal/config"
	"notifer/internal/credentials"
	"notifer/internal/dispatch"
	"notifer/internal/logging"
	"notifer/internal/notifer"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	storeOnce sync.Once
	store     *config.Store
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// configStore wraps the loaded config so administrative updates persist to
// the file it came from.
func (c *commandContext) configStore() (*config.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		c.store = config.NewStore(cfg, c.configPath)
	})
	return c.store, nil
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	effective := *cfg
	if c.logLevelFlag != nil {
		if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
			effective.Logging.Level = level
		}
	}
	logger, err := logging.NewFromConfig(&effective, w)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// dispatcher assembles the full send path. offline skips credentials and the
// HTTP client for commands that only resolve.
func (c *commandContext) dispatcher(cmd *cobra.Command, offline bool) (*dispatch.Dispatcher, error) {
	store, err := c.configStore()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if offline {
		return dispatch.New(store, nil, nil, logger), nil
	}

	cfg := store.Config()
	vault, err := credentials.FromConfig(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return dispatch.New(store, vault, notifer.New(notifer.WithLogger(logger)), logger), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
