package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Addr    string        `split_words:"true" default:":8000"`
	Timeout time.Duration `split_words:"true" default:"5s"`
	Model   string        `split_words:"true" required:"true"`
}

// Tests in this file mutate process environment and package state, so they do not
// run in parallel.

func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGTEST_MODEL=llama-3\nCFGTEST_TIMEOUT=2s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("CFGTEST_MODEL")
		os.Unsetenv("CFGTEST_TIMEOUT")
		SetEnvFile("")
	})

	SetEnvFile(path)
	conf, err := New[sampleConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Model != "llama-3" || conf.Timeout != 2*time.Second || conf.Addr != ":8000" {
		t.Fatalf("unexpected config: %+v", conf)
	}
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGTEST2_MODEL=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFGTEST2_MODEL", "from-env")
	t.Cleanup(func() { SetEnvFile("") })

	SetEnvFile(path)
	conf, err := New[sampleConfig]("CFGTEST2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Model != "from-env" {
		t.Fatalf("expected environment to win, got %q", conf.Model)
	}
}

func TestNewMissingRequired(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	if _, err := New[sampleConfig]("CFGTEST3"); err == nil {
		t.Fatal("expected error for missing env file")
	}

	SetEnvFile("")
	if _, err := New[sampleConfig]("CFGTEST3"); err == nil {
		t.Fatal("expected error for missing required MODEL")
	}
}
