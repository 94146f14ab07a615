package internal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zephyrtronium/rcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := rcore.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
	if cfg.DefaultEncoding != "UTF-8" {
		t.Errorf("wrong default encoding %q", cfg.DefaultEncoding)
	}
	if cfg.IntCacheLow != -5 || cfg.IntCacheHigh != 255 {
		t.Errorf("wrong integer cache bounds %d..%d", cfg.IntCacheLow, cfg.IntCacheHigh)
	}
}

func TestParseConfig(t *testing.T) {
	cases := map[string]struct {
		format string
		data   string
	}{
		"YAML": {"yaml", "default_encoding: ISO-8859-1\nint_cache_low: 0\nint_cache_high: 10\nspawn_shell: /bin/bash\n"},
		"TOML": {"toml", "default_encoding = \"ISO-8859-1\"\nint_cache_low = 0\nint_cache_high = 10\nspawn_shell = \"/bin/bash\"\n"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := rcore.ParseConfig([]byte(c.data), c.format)
			if err != nil {
				t.Fatalf("couldn't parse: %v", err)
			}
			want := rcore.Config{
				DefaultEncoding: "ISO-8859-1",
				IntCacheLow:     0,
				IntCacheHigh:    10,
				SpawnShell:      "/bin/bash",
			}
			if cfg != want {
				t.Errorf("wrong config: wanted %+v, have %+v", want, cfg)
			}
		})
	}
}

func TestParseConfigPartial(t *testing.T) {
	cfg, err := rcore.ParseConfig([]byte("log_verbosity: 2\n"), "yaml")
	if err != nil {
		t.Fatalf("couldn't parse: %v", err)
	}
	want := rcore.DefaultConfig()
	want.LogVerbosity = 2
	if cfg != want {
		t.Errorf("absent keys didn't keep defaults: wanted %+v, have %+v", want, cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]struct {
		format string
		data   string
	}{
		"YAMLUnknownKey":  {"yaml", "bogus: 1\n"},
		"TOMLUnknownKey":  {"toml", "bogus = 1\n"},
		"YAMLSyntax":      {"yaml", "default_encoding: [\n"},
		"TOMLSyntax":      {"toml", "default_encoding = \n"},
		"YAMLType":        {"yaml", "int_cache_low: many\n"},
		"BadEncoding":     {"yaml", "default_encoding: EBCDIC\n"},
		"InvertedCache":   {"toml", "int_cache_low = 10\nint_cache_high = 0\n"},
		"OversizedCache":  {"yaml", "int_cache_low: 0\nint_cache_high: 1000000\n"},
		"UnknownFormat":   {"json", "{}"},
		"EmptyFormatName": {"", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := rcore.ParseConfig([]byte(c.data), c.format); err == nil {
				t.Error("no error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"rc.yaml": "int_cache_high: 100\n",
		"rc.yml":  "int_cache_high: 100\n",
		"rc.toml": "int_cache_high = 100\n",
	}
	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := rcore.LoadConfig(path)
			if err != nil {
				t.Fatalf("couldn't load: %v", err)
			}
			if cfg.IntCacheHigh != 100 || cfg.IntCacheLow != -5 {
				t.Errorf("wrong cache bounds %d..%d", cfg.IntCacheLow, cfg.IntCacheHigh)
			}
		})
	}
	t.Run("Missing", func(t *testing.T) {
		if _, err := rcore.LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("no error for missing file")
		}
	})
	t.Run("Extension", func(t *testing.T) {
		path := filepath.Join(dir, "rc.ini")
		if err := os.WriteFile(path, []byte("x=1"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := rcore.LoadConfig(path); err == nil {
			t.Error("no error for unknown extension")
		}
	})
}
