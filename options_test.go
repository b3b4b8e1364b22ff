package termgpu

import (
	"testing"

	"github.com/gogpu/termgpu/atlas"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Columns != 80 || cfg.Rows != 24 {
		t.Errorf("grid = %dx%d, want 80x24", cfg.Columns, cfg.Rows)
	}
	if cfg.ResetFG.IsReset() || cfg.ResetBG.IsReset() {
		t.Error("reset pair must be concrete colors")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero columns", func(c *Config) { c.Columns = 0 }, "Columns"},
		{"negative rows", func(c *Config) { c.Rows = -1 }, "Rows"},
		{"zero font height", func(c *Config) { c.FontHeightPx = 0 }, "FontHeightPx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestConfigValidate_Atlas(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Atlas = atlas.Config{Width: 8, Height: 8}
	if cfg.Validate() == nil {
		t.Error("undersized atlas should fail validation")
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Columns: 10, Rows: 2, FontHeightPx: 16}
	cfg = cfg.withDefaults()
	if cfg.ResetFG.IsReset() || cfg.ResetBG.IsReset() {
		t.Error("defaults did not fill reset colors")
	}
	if cfg.Atlas.Width == 0 {
		t.Error("defaults did not fill atlas config")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config invalid: %v", err)
	}
}
