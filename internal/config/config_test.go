package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOCATOR_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.App.DivisionSize != 6 {
		t.Errorf("expected division size 6, got %d", cfg.App.DivisionSize)
	}
	if cfg.Allocator.PanelSize != 3 {
		t.Errorf("expected default panel size 3, got %d", cfg.Allocator.PanelSize)
	}
	if dsn := cfg.GetDSN(); dsn != "host=localhost port=5432 user=postgres password= dbname=debate_tab sslmode=disable" {
		t.Errorf("unexpected DSN %q", dsn)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadSQLiteDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/tab.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GetDSN() != "/tmp/tab.db" {
		t.Errorf("unexpected DSN %q", cfg.GetDSN())
	}
}

func TestLoadAllocatorOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allocator.yaml")
	content := "panel_size: 5\nodd_panels: false\nhistory_penalty: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOCATOR_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Allocator.PanelSize != 5 {
		t.Errorf("expected panel size 5, got %d", cfg.Allocator.PanelSize)
	}
	if cfg.Allocator.OddPanels {
		t.Error("expected odd panels to be disabled")
	}
	if cfg.Allocator.HistoryPenalty != 50 {
		t.Errorf("expected history penalty 50, got %f", cfg.Allocator.HistoryPenalty)
	}
	// untouched keys keep their defaults
	if cfg.Allocator.ConflictPenalty != 1e7 {
		t.Errorf("expected default conflict penalty, got %f", cfg.Allocator.ConflictPenalty)
	}
}

func TestLoadAllocatorRejectsInvalidOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allocator.yaml")
	if err := os.WriteFile(path, []byte("panel_size: 0\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOCATOR_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid allocator options to be rejected")
	}
}
