package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Session != "kisuke-terminal" {
		t.Errorf("Session: got %q, want %q", cfg.Session, "kisuke-terminal")
	}
	if cfg.Interval != "200ms" {
		t.Errorf("Interval: got %q, want %q", cfg.Interval, "200ms")
	}
	if cfg.ProbeTimeout != "1s" {
		t.Errorf("ProbeTimeout: got %q, want %q", cfg.ProbeTimeout, "1s")
	}
	if cfg.CaptureLines != 500 {
		t.Errorf("CaptureLines: got %d, want %d", cfg.CaptureLines, 500)
	}
	if cfg.Grace != "10s" {
		t.Errorf("Grace: got %q, want %q", cfg.Grace, "10s")
	}
	if cfg.GraceOptimistic != "30s" {
		t.Errorf("GraceOptimistic: got %q, want %q", cfg.GraceOptimistic, "30s")
	}
}

func TestLoad_ParsesDurations(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IntervalDuration != 200*time.Millisecond {
		t.Errorf("IntervalDuration: got %v, want %v", cfg.IntervalDuration, 200*time.Millisecond)
	}
	if cfg.ProbeTimeoutDuration != time.Second {
		t.Errorf("ProbeTimeoutDuration: got %v, want %v", cfg.ProbeTimeoutDuration, time.Second)
	}
	if cfg.GraceDuration != 10*time.Second {
		t.Errorf("GraceDuration: got %v, want %v", cfg.GraceDuration, 10*time.Second)
	}
	if cfg.GraceOptimisticDuration != 30*time.Second {
		t.Errorf("GraceOptimisticDuration: got %v, want %v", cfg.GraceOptimisticDuration, 30*time.Second)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT_PATROL_SESSION", "workbench")
	t.Setenv("PORT_PATROL_INTERVAL", "500ms")
	t.Setenv("PORT_PATROL_GRACE", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session != "workbench" {
		t.Errorf("Session: got %q, want %q", cfg.Session, "workbench")
	}
	if cfg.IntervalDuration != 500*time.Millisecond {
		t.Errorf("IntervalDuration: got %v, want %v", cfg.IntervalDuration, 500*time.Millisecond)
	}
	if cfg.GraceDuration != 5*time.Second {
		t.Errorf("GraceDuration: got %v, want %v", cfg.GraceDuration, 5*time.Second)
	}
}

func TestLoad_LegacySessionEnv(t *testing.T) {
	t.Setenv("KISUKE_TMUX_SESSION", "legacy-session")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session != "legacy-session" {
		t.Errorf("Session: got %q, want %q", cfg.Session, "legacy-session")
	}
}

func TestLoad_NewSessionEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("KISUKE_TMUX_SESSION", "legacy-session")
	t.Setenv("PORT_PATROL_SESSION", "new-session")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session != "new-session" {
		t.Errorf("Session: got %q, want %q", cfg.Session, "new-session")
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Setenv("PORT_PATROL_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid interval")
	}
}
