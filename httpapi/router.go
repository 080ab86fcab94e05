package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/tanpawarit/Chative-Personal-Assistant/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/external"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/history"
	"github.com/tanpawarit/Chative-Personal-Assistant/pkg/tts"
)

const defaultMaxRequestBodyBytes = 1 << 20

type Assistant interface {
	HandleMessage(ctx context.Context, prompt string) (orchestrator.Reply, error)
}

type WeatherLookup interface {
	LookupCity(ctx context.Context, city string, countryCode string) (contractx.WeatherReport, error)
}

type HeadlineSource interface {
	Headlines(ctx context.Context, q external.HeadlinesQuery) ([]contractx.Article, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req tts.Request) (tts.Result, error)
}

// Services are the collaborators behind the routes. Only Assistant is required;
// a nil service answers 503.
type Services struct {
	Assistant Assistant
	Weather   WeatherLookup
	News      HeadlineSource
	Speech    SpeechSynthesizer
	History   history.Store

	MaxRequestBodyBytes int64
}

type handlers struct {
	services Services
}

func NewRouter(services Services) http.Handler {
	if services.MaxRequestBodyBytes <= 0 {
		services.MaxRequestBodyBytes = defaultMaxRequestBodyBytes
	}
	h := &handlers{services: services}
	limit := limitBody(services.MaxRequestBodyBytes)

	mux := http.NewServeMux()
	handle(mux, http.MethodPost, "/chat/", limit(http.HandlerFunc(h.handleChat)))
	handle(mux, http.MethodPost, "/weather/", limit(http.HandlerFunc(h.handleWeather)))
	handle(mux, http.MethodPost, "/news/", limit(http.HandlerFunc(h.handleNews)))
	handle(mux, http.MethodPost, "/tts", limit(http.HandlerFunc(h.handleTTS)))
	handle(mux, http.MethodGet, "/conversations/", http.HandlerFunc(h.handleConversations))
	return mux
}

// handle registers an exact route. A trailing-slash path is also served without
// the slash so POST clients are not redirected.
func handle(mux *http.ServeMux, method string, path string, h http.Handler) {
	trimmed, hasSlash := strings.CutSuffix(path, "/")
	if !hasSlash {
		mux.Handle(method+" "+path, h)
		return
	}
	mux.Handle(method+" "+path+"{$}", h)
	mux.Handle(method+" "+trimmed, h)
}

func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
