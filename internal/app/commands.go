package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/tinsel/internal/config"
	"github.com/five82/tinsel/internal/scene"
	"github.com/five82/tinsel/internal/server"
)

// ServeOptions configure the headless server.
type ServeOptions struct {
	Options
	// GrowScene also runs due-checks against the local scene.
	GrowScene bool
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions, logger *zap.Logger) error {
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// The server always talks to the image service itself.
	remote, err := newRemote(cfg, logger)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Listen, server.Options{
		Provider:    remote,
		Countdown:   cfg.Countdown,
		RemoteReady: remote.Available(),
		Logger:      logger.Named("http"),
	})

	var rt *Runtime
	if opts.GrowScene {
		cfg.GeneratorMode = config.ModeRemote
		rt, err = Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if rt != nil {
		g.Go(func() error {
			<-StartPoller(gctx, rt.Manager, cfg.CheckEvery, logger.Named("poller"))
			return nil
		})
	}
	return g.Wait()
}

// Status writes a summary of the persisted scene to w.
func Status(ctx context.Context, opts Options, w io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	rt, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	snap := rt.Manager.Snapshot()
	now := time.Now()
	rem := cfg.Countdown.Remaining(now)

	fmt.Fprintf(w, "Elements:     %d\n", len(snap.Scene.Elements))
	if snap.Scene.HasLastAddition() {
		fmt.Fprintf(w, "Last update:  %s\n", snap.Scene.LastAdditionAt.Local().Format(time.RFC1123))
	} else {
		fmt.Fprintln(w, "Last update:  Never")
	}
	if next := snap.NextDue(); next.IsZero() || !next.After(now) {
		fmt.Fprintln(w, "Next due:     now")
	} else {
		fmt.Fprintf(w, "Next due:     %s (in %s)\n", next.Local().Format(time.RFC1123), next.Sub(now).Round(time.Second))
	}
	fmt.Fprintf(w, "Generator:    %s\n", generatorLabel(cfg, rt.RemoteReady))
	if rem.Arrived {
		fmt.Fprintln(w, "Countdown:    it's Christmas!")
	} else {
		fmt.Fprintf(w, "Countdown:    %dd %02dh %02dm %02ds\n", rem.Days, rem.Hours, rem.Minutes, rem.Seconds)
	}
	return nil
}

// Add runs one due-check, or adds a single element right away when force is set.
func Add(ctx context.Context, opts Options, force bool, logger *zap.Logger, w io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	rt, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	var added int
	if force {
		added, err = rt.Manager.AddNow(ctx)
	} else {
		added, err = rt.Manager.Check(ctx)
	}
	if err != nil {
		return fmt.Errorf("add elements: %w", err)
	}
	snap := rt.Manager.Snapshot()
	switch {
	case added == 0:
		fmt.Fprintln(w, "Nothing due yet.")
	default:
		fmt.Fprintf(w, "Added %d element(s); scene now has %d.\n", added, len(snap.Scene.Elements))
	}
	if snap.IsOffline() {
		fmt.Fprintln(w, "Image service unreachable, placeholders were used.")
	}
	return nil
}

// Reset clears the persisted scene once confirm approves.
func Reset(ctx context.Context, opts Options, confirm scene.Confirmer, logger *zap.Logger, w io.Writer) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	rt, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ok, err := rt.Manager.Reset(ctx, confirm)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "Cancelled.")
		return nil
	}
	fmt.Fprintln(w, "Scene cleared.")
	return nil
}

func generatorLabel(cfg config.Config, remote bool) string {
	switch {
	case cfg.GeneratorMode == config.ModePlaceholder:
		return "placeholders only"
	case cfg.GeneratorMode == config.ModeEndpoint:
		return "endpoint " + cfg.EndpointURL
	case remote:
		return "remote"
	default:
		return "remote (no api key, placeholders)"
	}
}

// ConfirmFrom reads a y/yes answer from r after writing prompt to w.
func ConfirmFrom(r io.Reader, w io.Writer, prompt string) scene.Confirmer {
	return func() bool {
		fmt.Fprintf(w, "%s [y/N]: ", prompt)
		var answer string
		if _, err := fmt.Fscanln(r, &answer); err != nil {
			return false
		}
		switch answer {
		case "y", "Y", "yes", "YES", "Yes":
			return true
		}
		return false
	}
}
