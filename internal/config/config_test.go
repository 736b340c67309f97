package config

import (
	"errors"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("symtable-server", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != "tcp://127.0.0.1:6380" {
		t.Errorf("Expected default addr, got %s", cfg.Addr)
	}
	if cfg.Impl != ImplHash {
		t.Errorf("Expected hash impl, got %s", cfg.Impl)
	}
	if cfg.Hasher != HasherMultiplicative {
		t.Errorf("Expected multiplicative hasher, got %s", cfg.Hasher)
	}
	if cfg.LogMaxSizeMB != 100 || cfg.LogMaxBackups != 3 || cfg.LogMaxAgeDays != 0 {
		t.Errorf("Expected log rotation defaults 100/3/0, got %d/%d/%d", cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays)
	}
}

func TestLoadRereadsEnvironment(t *testing.T) {
	t.Setenv("SYMTABLE_IMPL", "hash")
	t.Setenv("SYMTABLE_LOG_MAX_AGE_DAYS", "2")

	first, err := Load("symtable-server", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first.Impl != ImplHash || first.LogMaxAgeDays != 2 {
		t.Fatalf("Expected hash impl and 2 days, got %s and %d", first.Impl, first.LogMaxAgeDays)
	}

	t.Setenv("SYMTABLE_IMPL", "list")
	t.Setenv("SYMTABLE_LOG_MAX_AGE_DAYS", "14")

	second, err := Load("symtable-server", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Impl != ImplList {
		t.Errorf("Expected list impl after environment change, got %s", second.Impl)
	}
	if second.LogMaxAgeDays != 14 {
		t.Errorf("Expected 14 days after environment change, got %d", second.LogMaxAgeDays)
	}
}

func TestLoadEnvironmentDefaults(t *testing.T) {
	t.Setenv("SYMTABLE_IMPL", "list")
	t.Setenv("SYMTABLE_LOG_MAX_BACKUPS", "7")
	t.Setenv("SYMTABLE_MULTICORE", "true")

	cfg, err := Load("symtable-server", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Impl != ImplList {
		t.Errorf("Expected list impl from environment, got %s", cfg.Impl)
	}
	if cfg.LogMaxBackups != 7 {
		t.Errorf("Expected 7 backups from environment, got %d", cfg.LogMaxBackups)
	}
	if !cfg.Multicore {
		t.Error("Expected multicore from environment")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SYMTABLE_HASHER", "xxhash")

	cfg, err := Load("symtable-server", []string{"-hasher", "multiplicative", "-addr", "tcp://:7000", "-metrics-addr", "", "-log-max-age", "30"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Hasher != HasherMultiplicative {
		t.Errorf("Expected flag to win, got %s", cfg.Hasher)
	}
	if cfg.Addr != "tcp://:7000" {
		t.Errorf("Expected tcp://:7000, got %s", cfg.Addr)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("Expected metrics disabled, got %s", cfg.MetricsAddr)
	}
	if cfg.LogMaxAgeDays != 30 {
		t.Errorf("Expected 30 days, got %d", cfg.LogMaxAgeDays)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown impl", args: []string{"-impl", "tree"}},
		{name: "unknown hasher", args: []string{"-hasher", "md5"}},
		{name: "unknown log format", args: []string{"-log-format", "xml"}},
		{name: "empty addr", args: []string{"-addr", ""}},
		{name: "negative backups", args: []string{"-log-max-backups", "-1"}},
		{name: "negative max age", args: []string{"-log-max-age", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("symtable-server", tt.args)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
