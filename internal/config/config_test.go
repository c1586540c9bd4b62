package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/playmatatu/pong/internal/game"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	return path
}

func TestLoadTuningDefaults(t *testing.T) {
	got, err := LoadTuning("")
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if got != game.DefaultTuning() {
		t.Errorf("empty path did not yield the defaults: %+v", got)
	}
}

func TestLoadTuningOverrides(t *testing.T) {
	path := writeTuning(t, `
winning_score = 11
paddle_speed = 450.0
serve_delay_ticks = 30
`)
	got, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if got.WinningScore != 11 || got.PaddleSpeed != 450 || got.ServeDelayTicks != 30 {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.TableWidth != game.DefaultTuning().TableWidth {
		t.Errorf("unset key lost its default: width %.0f", got.TableWidth)
	}
}

func TestLoadTuningRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "gravity = 9.8\n"},
		{"tunneling speed", "max_ball_speed = 5000.0\n"},
		{"zero winning score", "winning_score = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuning(writeTuning(t, tt.body))
			if !errors.Is(err, game.ErrInvalidTuning) {
				t.Errorf("LoadTuning error = %v, want ErrInvalidTuning", err)
			}
		})
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("missing file accepted")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STREAM_FPS", "30")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("HEADLESS_MAX_TICKS", "1200")
	t.Setenv("TUNING_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.StreamFPS != 30 || cfg.MigrateOnStart || cfg.HeadlessMaxTicks != 1200 {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.Tuning != game.DefaultTuning() {
		t.Errorf("tuning = %+v, want defaults", cfg.Tuning)
	}
}

func TestLoadRejectsBadTickLimit(t *testing.T) {
	t.Setenv("HEADLESS_MAX_TICKS", "-5")
	if _, err := Load(); err == nil {
		t.Errorf("negative HEADLESS_MAX_TICKS accepted")
	}
}
