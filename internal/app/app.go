package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/tinsel/internal/config"
	"github.com/five82/tinsel/internal/generator"
	"github.com/five82/tinsel/internal/leonardo"
	"github.com/five82/tinsel/internal/localstore"
	"github.com/five82/tinsel/internal/logging"
	"github.com/five82/tinsel/internal/prefs"
	"github.com/five82/tinsel/internal/scene"
	"github.com/five82/tinsel/internal/state"
	"github.com/five82/tinsel/internal/ui"
)

// Ensure the manager satisfies the interfaces the poller and UI depend on.
var (
	_ Checker         = (*scene.Manager)(nil)
	_ ui.SceneManager = (*scene.Manager)(nil)
)

// Options configure the tinsel application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tinsel/prefs.toml
	DBPath     string // overrides scene.db_path
	Listen     string // overrides server.listen
}

// LoadConfig reads the config file and applies command-line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.DBPath); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(opts.Listen); v != "" {
		cfg.Listen = v
	}
	return cfg, nil
}

// Runtime holds the components shared by every command.
type Runtime struct {
	Config      config.Config
	Logger      *zap.Logger
	Manager     *scene.Manager
	Provider    generator.Provider
	RemoteReady bool
	// Updates receives a value whenever the scene changes. It is never closed.
	Updates <-chan struct{}

	kv *localstore.SQLite
}

// Open wires storage, the provider and the scene manager, then restores the
// persisted scene.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	kv, err := localstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open scene store: %w", err)
	}

	provider, remote, err := NewProvider(cfg, logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	updates := make(chan struct{}, 1)
	manager := scene.New(scene.Options{
		Store:    state.NewKVStore(kv),
		Provider: provider,
		Interval: cfg.Interval,
		Stagger:  cfg.Stagger,
		Logger:   logger.Named("scene"),
		OnChange: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})
	manager.Restore(ctx)

	return &Runtime{
		Config:      cfg,
		Logger:      logger,
		Manager:     manager,
		Provider:    provider,
		RemoteReady: remote,
		Updates:     updates,
		kv:          kv,
	}, nil
}

// Close releases the scene store.
func (r *Runtime) Close() error {
	if r == nil || r.kv == nil {
		return nil
	}
	return r.kv.Close()
}

// NewProvider builds the element provider for cfg.GeneratorMode. The bool
// reports whether a remote path is configured.
func NewProvider(cfg config.Config, logger *zap.Logger) (generator.Provider, bool, error) {
	switch cfg.GeneratorMode {
	case config.ModePlaceholder:
		return generator.Unavailable{}, false, nil
	case config.ModeEndpoint:
		endpoint, err := generator.NewEndpoint(cfg.EndpointURL)
		if err != nil {
			return nil, false, fmt.Errorf("init generator endpoint: %w", err)
		}
		return endpoint, true, nil
	default:
		remote, err := newRemote(cfg, logger)
		if err != nil {
			return nil, false, err
		}
		return remote, remote.Available(), nil
	}
}

// newRemote returns a Remote provider. Without an API key the provider is
// still returned and reports leonardo.ErrNoCredentials on every call.
func newRemote(cfg config.Config, logger *zap.Logger) (*generator.Remote, error) {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if !cfg.HasAPIKey() {
		logger.Info("no image api key configured, using placeholders")
		return generator.NewRemote(nil, cfg.ModelID, logger.Named("generator"), rng), nil
	}
	client, err := leonardo.NewClient(cfg.APIKey,
		leonardo.WithBaseURL(cfg.APIBaseURL),
		leonardo.WithPollPolicy(cfg.Poll),
	)
	if err != nil {
		return nil, fmt.Errorf("init image client: %w", err)
	}
	return generator.NewRemote(client, cfg.ModelID, logger.Named("generator"), rng), nil
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logger, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	// Background due-checks
	done := StartPoller(ctx, rt.Manager, cfg.CheckEvery, logger.Named("poller"))
	defer func() {
		cancel()
		<-done
	}()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	return ui.Run(ui.Options{
		Context:       ctx,
		Manager:       rt.Manager,
		Countdown:     cfg.Countdown,
		Updates:       rt.Updates,
		GeneratorMode: cfg.GeneratorMode,
		ThemeName:     userPrefs.Theme,
		Snow:          userPrefs.Snow,
		PrefsPath:     prefsPath,
		LogPath:       cfg.LogPath,
		Logger:        logger.Named("ui"),
	})
}
