package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zhikeeper.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
browser:
  stealth: headful
  resource_blocking: [images, fonts]
pages:
  - id: feed
    url: https://www.zhihu.com/
  - url: https://www.zhihu.com/question/123
debounce:
  window: 500ms
sweep:
  interval: 2s
theme: dark
bases:
  column: https://zhuanlan.example.test
sinks:
  - type: stdout
  - type: webhook
    url: https://hooks.example.test/zk
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Browser.Stealth != "headful" {
		t.Errorf("stealth: got %q", cfg.Browser.Stealth)
	}
	if len(cfg.Pages) != 2 {
		t.Fatalf("pages: got %d", len(cfg.Pages))
	}
	if cfg.Pages[0].ID != "feed" {
		t.Errorf("page 0 id: got %q", cfg.Pages[0].ID)
	}
	if cfg.Pages[1].ID != "page-1" {
		t.Errorf("page 1 should get a generated id, got %q", cfg.Pages[1].ID)
	}
	if cfg.Debounce.Window != 500*time.Millisecond {
		t.Errorf("debounce window: got %v", cfg.Debounce.Window)
	}
	if cfg.Debounce.MaxBuffer != 1000 {
		t.Errorf("debounce max buffer default: got %d", cfg.Debounce.MaxBuffer)
	}
	if cfg.Sweep.Interval != 2*time.Second {
		t.Errorf("sweep interval: got %v", cfg.Sweep.Interval)
	}
	if cfg.Theme != "dark" {
		t.Errorf("theme: got %q", cfg.Theme)
	}
	if cfg.Bases.Column != "https://zhuanlan.example.test" {
		t.Errorf("column base: got %q", cfg.Bases.Column)
	}
	if len(cfg.Sinks) != 2 {
		t.Errorf("sinks: got %d", len(cfg.Sinks))
	}
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
pages:
  - url: https://www.zhihu.com/
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.Stealth != "headless" {
		t.Errorf("stealth default: got %q", cfg.Browser.Stealth)
	}
	if cfg.Debounce.Window != 250*time.Millisecond {
		t.Errorf("debounce default: got %v", cfg.Debounce.Window)
	}
	if cfg.Sweep.Interval != time.Second {
		t.Errorf("sweep default: got %v", cfg.Sweep.Interval)
	}
	if cfg.Theme != "auto" {
		t.Errorf("theme default: got %q", cfg.Theme)
	}
}

func TestLoadFileRejects(t *testing.T) {
	cases := []struct {
		name, yaml string
	}{
		{"no pages", `theme: auto`},
		{"page without url", "pages:\n  - id: x"},
		{"bad theme", "pages:\n  - url: https://a\ntheme: sepia"},
		{"webhook without url", "pages:\n  - url: https://a\nsinks:\n  - type: webhook"},
		{"unknown sink", "pages:\n  - url: https://a\nsinks:\n  - type: nats"},
		{"malformed yaml", "pages: ["},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, c.yaml)); err == nil {
				t.Error("want error")
			}
		})
	}
}
