package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc) (*Synthesizer, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	s, err := New(Config{APIKey: "key", BaseURL: srv.URL, CacheDir: dir, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new synthesizer: %v", err)
	}
	return s, dir
}

func TestSynthesizeCallsUpstreamAndCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	s, dir := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/text-to-speech/voice1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		var payload synthesisPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.ModelID != DefaultModelID || payload.VoiceSettings.Stability != 0.5 {
			t.Errorf("unexpected payload: %+v", payload)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	req := Request{Text: "hello", VoiceID: "voice1", Stability: 0.5, SimilarityBoost: 0.75}
	first, err := s.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached || string(first.Audio) != "mp3-bytes" {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := s.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached || string(second.Audio) != "mp3-bytes" {
		t.Fatalf("expected cached result, got %+v", second)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}

	if _, err := os.Stat(filepath.Join(dir, CacheKey("voice1", "hello"))); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".tts-*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestSynthesizeCoalescesConcurrentRequests(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	s, _ := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte("audio"))
	})

	const n = 8
	var wg sync.WaitGroup
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			if _, err := s.Synthesize(context.Background(), Request{Text: "same", VoiceID: "v"}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestSynthesizeSharedCallSurvivesCancelledCaller(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	s, _ := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte("audio"))
	})
	req := Request{Text: "shared", VoiceID: "v"}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Synthesize(firstCtx, req)
		firstErr <- err
	}()
	<-arrived

	type outcome struct {
		res Result
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := s.Synthesize(context.Background(), req)
		second <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected cancelled caller to fail with context.Canceled, got %v", err)
	}

	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("caller with live context failed: %v", got.err)
	}
	if string(got.res.Audio) != "audio" {
		t.Fatalf("unexpected audio %q", got.res.Audio)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one upstream call, got %d", n)
	}
}

func TestSynthesizeUpstreamError(t *testing.T) {
	t.Parallel()

	s, dir := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	})

	_, err := s.Synthesize(context.Background(), Request{Text: "hi", VoiceID: "v"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected APIError 401, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, CacheKey("v", "hi"))); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("failed synthesis must not be cached: %v", statErr)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	t.Parallel()

	s, _ := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("upstream must not be called")
	})
	if _, err := s.Synthesize(context.Background(), Request{Text: "  "}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := s.Synthesize(context.Background(), Request{Text: "hi", VoiceID: "../etc"}); err == nil {
		t.Fatal("expected invalid voice id error")
	}
}

func TestCacheKeyNormalizesText(t *testing.T) {
	t.Parallel()

	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if CacheKey("v", composed) != CacheKey("v", decomposed) {
		t.Fatal("expected NFC-equivalent text to share a cache key")
	}
	if CacheKey("v", "a") == CacheKey("w", "a") {
		t.Fatal("expected voice to be part of the cache key")
	}
}
