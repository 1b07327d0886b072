package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/five82/tinsel/internal/config"
	"github.com/five82/tinsel/internal/generator"
)

func setup(t *testing.T, mode string) Options {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"LEONARDO_API_KEY", "TINSEL_LISTEN", "TINSEL_DB",
		"TINSEL_GENERATOR_URL", "TINSEL_GENERATOR_MODE", "TINSEL_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	path := filepath.Join(home, "config.toml")
	body := "[scene]\nstagger = \"-1s\"\n\n[generator]\nmode = \"" + mode + "\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return Options{
		ConfigPath: path,
		DBPath:     filepath.Join(home, "data", "scene.db"),
		Listen:     "127.0.0.1:0",
	}
}

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	opts := setup(t, "placeholder")
	cfg, err := LoadConfig(opts)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBPath != opts.DBPath || cfg.Listen != "127.0.0.1:0" || cfg.Stagger >= 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestAddStatusReset_RoundTrip(t *testing.T) {
	opts := setup(t, "placeholder")
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	var out bytes.Buffer
	if err := Add(ctx, opts, false, logger, &out); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !strings.Contains(out.String(), "Added 1 element(s); scene now has 1.") {
		t.Fatalf("first add output = %q", out.String())
	}

	out.Reset()
	if err := Add(ctx, opts, false, logger, &out); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !strings.Contains(out.String(), "Nothing due yet.") {
		t.Fatalf("second add output = %q", out.String())
	}

	out.Reset()
	if err := Add(ctx, opts, true, logger, &out); err != nil {
		t.Fatalf("Add --force: %v", err)
	}
	if !strings.Contains(out.String(), "scene now has 2") {
		t.Fatalf("forced add output = %q", out.String())
	}

	out.Reset()
	if err := Status(ctx, opts, &out); err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, want := range []string{"Elements:     2", "Generator:    placeholders only", "Next due:     "} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("status output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	var prompt bytes.Buffer
	if err := Reset(ctx, opts, ConfirmFrom(strings.NewReader("n\n"), &prompt, "Clear?"), logger, &out); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !strings.Contains(out.String(), "Cancelled.") || !strings.Contains(prompt.String(), "Clear? [y/N]") {
		t.Fatalf("declined reset output = %q prompt = %q", out.String(), prompt.String())
	}

	out.Reset()
	if err := Reset(ctx, opts, ConfirmFrom(strings.NewReader("yes\n"), &prompt, "Clear?"), logger, &out); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !strings.Contains(out.String(), "Scene cleared.") {
		t.Fatalf("confirmed reset output = %q", out.String())
	}

	out.Reset()
	if err := Status(ctx, opts, &out); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !strings.Contains(out.String(), "Elements:     0") || !strings.Contains(out.String(), "Last update:  Never") {
		t.Fatalf("status after reset:\n%s", out.String())
	}
}

func TestConfirmFrom_EOFDeclines(t *testing.T) {
	var w bytes.Buffer
	if ConfirmFrom(strings.NewReader(""), &w, "Clear?")() {
		t.Fatalf("empty input confirmed")
	}
}

func TestNewProvider_Modes(t *testing.T) {
	logger := zaptest.NewLogger(t)
	base := config.Defaults()

	cfg := base
	cfg.GeneratorMode = config.ModePlaceholder
	p, remote, err := NewProvider(cfg, logger)
	if err != nil || remote {
		t.Fatalf("placeholder: remote=%v err=%v", remote, err)
	}
	if _, ok := p.(generator.Unavailable); !ok {
		t.Fatalf("placeholder provider = %T", p)
	}

	cfg = base
	cfg.GeneratorMode = config.ModeEndpoint
	p, remote, err = NewProvider(cfg, logger)
	if err != nil || !remote {
		t.Fatalf("endpoint: remote=%v err=%v", remote, err)
	}
	if _, ok := p.(*generator.Endpoint); !ok {
		t.Fatalf("endpoint provider = %T", p)
	}

	cfg = base
	cfg.APIKey = ""
	_, remote, err = NewProvider(cfg, logger)
	if err != nil || remote {
		t.Fatalf("remote without key: remote=%v err=%v", remote, err)
	}

	cfg.APIKey = "key"
	p, remote, err = NewProvider(cfg, logger)
	if err != nil || !remote {
		t.Fatalf("remote with key: remote=%v err=%v", remote, err)
	}
	if _, ok := p.(*generator.Remote); !ok {
		t.Fatalf("remote provider = %T", p)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	opts := setup(t, "remote")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeOptions{Options: opts, GrowScene: true}, zaptest.NewLogger(t))
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not stop")
	}
}
