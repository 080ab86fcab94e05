// Package tts synthesizes speech with ElevenLabs and keeps an on-disk MP3 cache.
package tts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultModelID         = "eleven_monolingual_v1"
	DefaultVoiceID         = "EXAVITQu4vr4xnSDxMaL"
	DefaultStability       = 0.7
	DefaultSimilarityBoost = 0.7

	maxAudioSizeBytes = 32 << 20
)

var (
	ErrEmptyText   = errors.New("tts text is empty")
	ErrUnavailable = errors.New("tts service unavailable")
)

// APIError is a non-2xx answer from ElevenLabs.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs status=%d body=%s", e.StatusCode, e.Body)
}

type Config struct {
	APIKey   string        `split_words:"true"`
	BaseURL  string        `split_words:"true" default:"https://api.elevenlabs.io/v1"`
	ModelID  string        `split_words:"true" default:"eleven_monolingual_v1"`
	VoiceID  string        `split_words:"true" default:"EXAVITQu4vr4xnSDxMaL"`
	CacheDir string        `split_words:"true" default:"tts_cache"`
	Timeout  time.Duration `split_words:"true" default:"30s"`
}

type Request struct {
	Text            string
	VoiceID         string
	Stability       float64
	SimilarityBoost float64
	// SkipCache forces a fresh synthesis; the result still refreshes the cache.
	SkipCache bool
}

type Result struct {
	Audio  []byte
	Cached bool
}

type Synthesizer struct {
	baseURL    string
	apiKey     string
	modelID    string
	voiceID    string
	cacheDir   string
	httpClient *http.Client

	group singleflight.Group
}

type Option func(*Synthesizer)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Synthesizer) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func New(cfg Config, opts ...Option) (*Synthesizer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid elevenlabs base url: %w", err)
	}

	cacheDir := strings.TrimSpace(cfg.CacheDir)
	if cacheDir == "" {
		cacheDir = "tts_cache"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tts cache dir: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Synthesizer{
		baseURL:    baseURL,
		apiKey:     apiKey,
		modelID:    orDefault(cfg.ModelID, DefaultModelID),
		voiceID:    orDefault(cfg.VoiceID, DefaultVoiceID),
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// CacheKey names the cached file for a voice and text. Text is NFC-normalised so
// visually identical input shares one entry.
func CacheKey(voiceID string, text string) string {
	sum := sha256.Sum256([]byte(norm.NFC.String(text)))
	return voiceID + "_" + hex.EncodeToString(sum[:]) + ".mp3"
}

// Synthesize returns cached audio when present, otherwise calls ElevenLabs and
// stores the result. Concurrent identical requests share one upstream call.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, ErrEmptyText
	}
	voiceID := orDefault(req.VoiceID, s.voiceID)
	if strings.ContainsAny(voiceID, `/\.`) {
		return Result{}, fmt.Errorf("invalid voice id %q", voiceID)
	}
	path := filepath.Join(s.cacheDir, CacheKey(voiceID, req.Text))

	if !req.SkipCache {
		audio, err := os.ReadFile(path)
		if err == nil {
			return Result{Audio: audio, Cached: true}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("read tts cache: %w", err)
		}
	}

	// The shared call outlives any single caller; the HTTP client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(path, func() (any, error) {
		audio, err := s.fetch(shared, voiceID, req)
		if err != nil {
			return nil, err
		}
		if err := writeAtomic(path, audio); err != nil {
			return nil, err
		}
		return audio, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		return Result{Audio: res.Val.([]byte)}, nil
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func (s *Synthesizer) fetch(ctx context.Context, voiceID string, req Request) ([]byte, error) {
	body, err := json.Marshal(synthesisPayload{
		Text:    req.Text,
		ModelID: s.modelID,
		VoiceSettings: voiceSettings{
			Stability:       req.Stability,
			SimilarityBoost: req.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts payload: %w", err)
	}

	endpoint := s.baseURL + "/text-to-speech/" + url.PathEscape(voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(audio))}
	}
	if len(audio) == 0 {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Body: "empty audio"}
	}
	return audio, nil
}

// writeAtomic writes through a temp file in the same directory and renames it
// into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tts-*.tmp")
	if err != nil {
		return fmt.Errorf("create tts temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write tts temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close tts temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename tts cache file: %w", err)
	}
	return nil
}

func orDefault(v string, fallback string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return fallback
}
