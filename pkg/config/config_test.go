package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fupd.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
[global]
server = "rr.ntt.net:43"
outputdir = "/tmp/filters"
sources = ["ripe", "arin"]

[[routers]]
hostname = "edge1"
style = "prefix-list"
filters = ["AS-CUSTOMERS"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Global.Aggregate {
		t.Errorf("expected default aggregate=true")
	}
	if cfg.Global.BatchSize != 200 {
		t.Errorf("expected default batch_size=200, got %d", cfg.Global.BatchSize)
	}
	if len(cfg.Routers) != 1 || cfg.Routers[0].Hostname != "edge1" {
		t.Errorf("unexpected routers: %+v", cfg.Routers)
	}
}

func TestLoad_MissingServer(t *testing.T) {
	path := writeConfig(t, `
[global]
outputdir = "/tmp/filters"
sources = ["ripe"]

[[routers]]
hostname = "edge1"
style = "prefix-list"
filters = ["AS-CUSTOMERS"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing server")
	}
}

func TestLoad_BadStyle(t *testing.T) {
	path := writeConfig(t, `
[global]
server = "rr.ntt.net:43"
outputdir = "/tmp/filters"
sources = ["ripe"]

[[routers]]
hostname = "edge1"
style = "bogus"
filters = ["AS-CUSTOMERS"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad style")
	}
}

func TestLoad_NoRouters(t *testing.T) {
	path := writeConfig(t, `
[global]
server = "rr.ntt.net:43"
outputdir = "/tmp/filters"
sources = ["ripe"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for no routers")
	}
}
