package commands

import (
	"fmt"

	"github.com/jrdwe/floodfile/internal/cli/prompt"
	"github.com/jrdwe/floodfile/internal/logger"
	"github.com/jrdwe/floodfile/pkg/channel"
	"github.com/jrdwe/floodfile/pkg/config"
	"github.com/jrdwe/floodfile/pkg/session"
)

// loadConfigAndLogger loads the persistent config (honoring --config) and
// initializes structured logging from its Logging section.
func loadConfigAndLogger() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// resolveInterface picks the interface to bind: explicit name if given,
// else the config's saved interface, else the first usable one (prompting
// interactively when more than one candidate exists and neither was set).
func resolveInterface(explicit string, cfg *config.Config) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if cfg.Interface != "" {
		return cfg.Interface, nil
	}

	candidates, err := channel.UsableInterfaces()
	if err != nil {
		return "", fmt.Errorf("enumerate interfaces: %w", err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no usable network interface found")
	}
	if len(candidates) == 1 {
		return candidates[0].Name, nil
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return prompt.SelectString("Select a network interface", names)
}

// startSession binds a Channel on the resolved interface and starts a
// Session loop for it, applying cfg.StorageDir.
func startSession(interfaceName string, cfg *config.Config) (*session.Session, error) {
	ch, err := session.DefaultOpener(interfaceName)
	if err != nil {
		return nil, fmt.Errorf("open channel on %s: %w", interfaceName, err)
	}
	if cfg.StorageDir != "" {
		if err := ch.SetPath(cfg.StorageDir); err != nil {
			logger.Warn("ignoring invalid configured storage dir", "path", cfg.StorageDir, "error", err)
		}
	}

	s := session.New(ch, session.DefaultOpener)
	go s.Run()
	return s, nil
}
