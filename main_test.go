package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tanpawarit/Chative-Personal-Assistant/app"
)

type recordingDispatcher struct {
	prompt string
	reply  string
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, prompt string) (string, error) {
	d.prompt = prompt
	return d.reply, d.err
}

// stubDispatcher swaps the runtime wiring for the duration of the test.
func stubDispatcher(t *testing.T, d *recordingDispatcher) *app.Settings {
	t.Helper()
	var seen app.Settings
	original := openDispatcher
	openDispatcher = func(_ context.Context, s app.Settings) (dispatcher, func() error, error) {
		seen = s
		return d, func() error { return nil }, nil
	}
	t.Cleanup(func() { openDispatcher = original })
	return &seen
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestAskReadsEnvFileAndPrintsReply(t *testing.T) {
	unsetEnv(t, "LLM_MODEL")
	unsetEnv(t, "LLM_WORKERS")
	envPath := writeEnvFile(t, "LLM_MODEL=qwen2.5-1.5b-instruct\nLLM_WORKERS=3\n")

	d := &recordingDispatcher{reply: "The result of 2 + 2 is: 4"}
	seen := stubDispatcher(t, d)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--env", envPath, "ask", "calculate", "2", "+", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if seen.LLM.Model != "qwen2.5-1.5b-instruct" || seen.LLM.Workers != 3 {
		t.Fatalf("env file not applied: %+v", seen.LLM)
	}
	if d.prompt != "calculate 2 + 2" {
		t.Fatalf("unexpected prompt %q", d.prompt)
	}
	if got := strings.TrimSpace(out.String()); got != "The result of 2 + 2 is: 4" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestAskPropagatesDispatchError(t *testing.T) {
	unsetEnv(t, "LLM_MODEL")
	envPath := writeEnvFile(t, "LLM_MODEL=qwen2.5-1.5b-instruct\n")

	dispatchErr := errors.New("model inference failed")
	stubDispatcher(t, &recordingDispatcher{err: dispatchErr})

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--env", envPath, "ask", "tell me a joke"})
	if err := rootCmd.Execute(); !errors.Is(err, dispatchErr) {
		t.Fatalf("expected dispatch error, got %v", err)
	}
}

func TestAskRejectsMissingEnvFileAndPrompt(t *testing.T) {
	stubDispatcher(t, &recordingDispatcher{})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	missing := filepath.Join(t.TempDir(), "absent.env")
	rootCmd.SetArgs([]string{"--env", missing, "ask", "hello"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing env file")
	}

	rootCmd.SetArgs([]string{"ask"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error without a prompt")
	}
}
