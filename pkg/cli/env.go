package cli

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/microej-driver/pkg/config"
	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/devicelab-dev/microej-driver/pkg/driver/microej"
	"github.com/devicelab-dev/microej-driver/pkg/driver/mock"
	"github.com/devicelab-dev/microej-driver/pkg/logger"
	"github.com/urfave/cli/v2"
)

// env is what every command needs: resolved config and a driver.
type env struct {
	cfg    *config.Config
	driver core.Driver
}

const envKey = "microej-env"

// loadConfig resolves configuration: file, then MICROEJ_* variables, then flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.ApplyEnv()
	if u := c.String("proxy-url"); u != "" {
		cfg.SetProxyBaseURL(u)
	}
	if f := c.String("log-file"); f != "" {
		cfg.Log.File = f
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createDriver builds the driver named by --driver.
func createDriver(name string, cfg *config.Config) (core.Driver, error) {
	switch strings.ToLower(name) {
	case "microej", "":
		logger.Info("Using MicroEJ proxy at %s (timeout %v)", cfg.ProxyBaseURL, cfg.RequestTimeout)
		return microej.NewDriver(cfg.ProxyBaseURL, cfg.RequestTimeout), nil
	case "mock":
		logger.Info("Using mock driver")
		return mock.New(mock.Config{}), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s (use microej or mock)", name)
	}
}

// setupEnv loads config, starts logging and creates the driver. The result
// is cached in the app metadata so After can close the log.
func setupEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	if err := logger.InitWithOptions(logger.Options{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Verbose:    c.Bool("verbose"),
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Info("microej-driver %s: %s", Version, c.Command.Name)

	drv, err := createDriver(c.String("driver"), cfg)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, driver: drv}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[envKey] = e
	return e, nil
}

func closeEnv(c *cli.Context) {
	if _, ok := c.App.Metadata[envKey]; ok {
		logger.Close()
		delete(c.App.Metadata, envKey)
	}
}
