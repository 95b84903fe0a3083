package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/family-tree/internal/generate"
	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/refdata"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family-tree.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Seed != 0 {
		t.Errorf("expected seed 0, got %d", cfg.Seed)
	}
	if cfg.Policy != generate.DefaultPolicy() {
		t.Errorf("expected default policy, got %+v", cfg.Policy)
	}
	if len(cfg.Founders) != 2 {
		t.Fatalf("expected 2 founders, got %d", len(cfg.Founders))
	}
	if cfg.Founders[0].Gender != model.Male || cfg.Founders[1].Gender != model.Female {
		t.Errorf("unexpected founder genders %+v", cfg.Founders)
	}
	for i, f := range cfg.Founders {
		if f.LastName != "Jones" || f.FirstName != "" || f.YearBorn != refdata.MinYear {
			t.Errorf("founder %d: unexpected defaults %+v", i+1, f)
		}
	}
	if cfg.Data.Dir != "." {
		t.Errorf("expected data dir '.', got %q", cfg.Data.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
seed: 42
policy:
  child_count: wiggle
  surname_weighting: decade_scoped
  traversal: breadth_first
  horizon_year: 2050
founders:
  - first_name: Ada
    last_name: Byron
    year_born: 1960
    gender: female
  - last_name: King
    year_born: 1958
    gender: male
data:
  dir: /srv/tables
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Seed)
	}
	want := generate.Policy{
		ChildCount:       generate.Wiggle,
		SurnameWeighting: refdata.DecadeScoped,
		Traversal:        generate.BreadthFirst,
		HorizonYear:      2050,
	}
	if cfg.Policy != want {
		t.Errorf("policy = %+v, want %+v", cfg.Policy, want)
	}
	if len(cfg.Founders) != 2 {
		t.Fatalf("expected 2 founders, got %d", len(cfg.Founders))
	}
	if cfg.Founders[0].FirstName != "Ada" || cfg.Founders[0].Gender != model.Female {
		t.Errorf("unexpected first founder %+v", cfg.Founders[0])
	}
	if cfg.Founders[1].FirstName != "" || cfg.Founders[1].YearBorn != 1958 {
		t.Errorf("unexpected second founder %+v", cfg.Founders[1])
	}
	if cfg.Data.Dir != "/srv/tables" {
		t.Errorf("expected data dir /srv/tables, got %q", cfg.Data.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "policy:\n  traversal: breadth_first\n")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Policy.Traversal != generate.BreadthFirst {
		t.Errorf("expected breadth_first, got %q", cfg.Policy.Traversal)
	}
	if cfg.Policy.ChildCount != generate.RoundedMean {
		t.Errorf("expected default child_count, got %q", cfg.Policy.ChildCount)
	}
	if cfg.Policy.HorizonYear != refdata.MaxYear {
		t.Errorf("expected default horizon, got %d", cfg.Policy.HorizonYear)
	}
	if len(cfg.Founders) != 2 {
		t.Errorf("expected default founders, got %+v", cfg.Founders)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeConfig(t, "policy: [not, a, map]\n")
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "seed: 7\ndata:\n  dir: from-file\n")

	t.Setenv("FAMILY_TREE_SEED", "99")
	t.Setenv("FAMILY_TREE_POLICY_TRAVERSAL", "breadth_first")
	t.Setenv("FAMILY_TREE_POLICY_HORIZON_YEAR", "2000")
	t.Setenv("FAMILY_TREE_DATA_DB", "/tmp/tables.db")
	t.Setenv("FAMILY_TREE_LOG_LEVEL", "trace")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Seed != 99 {
		t.Errorf("expected env seed 99, got %d", cfg.Seed)
	}
	if cfg.Policy.Traversal != generate.BreadthFirst {
		t.Errorf("expected breadth_first, got %q", cfg.Policy.Traversal)
	}
	if cfg.Policy.HorizonYear != 2000 {
		t.Errorf("expected horizon 2000, got %d", cfg.Policy.HorizonYear)
	}
	if cfg.Data.Dir != "from-file" {
		t.Errorf("expected file value for data dir, got %q", cfg.Data.Dir)
	}
	if cfg.Data.DB != "/tmp/tables.db" {
		t.Errorf("expected env db path, got %q", cfg.Data.DB)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("expected trace, got %q", cfg.Logging.Level)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, "seed: 1234\n")
	t.Setenv("FAMILY_TREE_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Seed != 1234 {
		t.Errorf("expected seed from env-named file, got %d", cfg.Seed)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("FAMILY_TREE_SEED", "not-a-number")

	_, err := Load(writeConfig(t, ""))
	if err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Errorf("expected parse env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad child count", func(c *Config) { c.Policy.ChildCount = "poisson" }, "child_count"},
		{"bad weighting", func(c *Config) { c.Policy.SurnameWeighting = "alphabetical" }, "surname_weighting"},
		{"bad traversal", func(c *Config) { c.Policy.Traversal = "random" }, "traversal"},
		{"horizon too early", func(c *Config) { c.Policy.HorizonYear = 1900 }, "horizon_year"},
		{"one founder", func(c *Config) { c.Founders = c.Founders[:1] }, "exactly 2"},
		{"founder gender", func(c *Config) { c.Founders[0].Gender = "other" }, "invalid gender"},
		{"founder year", func(c *Config) { c.Founders[1].YearBorn = 1900 }, "year_born"},
		{"no data source", func(c *Config) { c.Data = DataConfig{} }, "data.dir"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveSeed(t *testing.T) {
	cfg := Default()
	cfg.Seed = 5
	seed, err := cfg.ResolveSeed()
	if err != nil || seed != 5 {
		t.Errorf("expected configured seed 5, got %d (%v)", seed, err)
	}

	cfg.Seed = 0
	a, err := cfg.ResolveSeed()
	if err != nil {
		t.Fatalf("ResolveSeed failed: %v", err)
	}
	b, _ := cfg.ResolveSeed()
	if a == b {
		t.Errorf("expected fresh seeds, got %d twice", a)
	}
}
