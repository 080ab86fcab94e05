package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tanpawarit/Chative-Personal-Assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/external"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/history"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/llm"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/tool"
	"github.com/tanpawarit/Chative-Personal-Assistant/httpapi"
	llamacppx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/llamacpp"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
	"github.com/tanpawarit/Chative-Personal-Assistant/pkg/postgres"
	"github.com/tanpawarit/Chative-Personal-Assistant/pkg/tts"
	"github.com/uptrace/bun"
)

// ReadinessProbe reports whether the inference backend can serve requests.
type ReadinessProbe func(ctx context.Context) error

// Runtime owns the collaborators of one process. Optional services stay nil when
// their API key or URL is not configured.
type Runtime struct {
	Engine       *llm.Engine
	Orchestrator *orchestrator.Orchestrator
	Weather      *external.WeatherClient
	News         *external.NewsClient
	Speech       *tts.Synthesizer
	History      *history.BunStore
	Probe        ReadinessProbe

	db *bun.DB
}

func Wire(ctx context.Context, s Settings) (*Runtime, error) {
	engine, err := llm.Open(ctx, s.LLM)
	if err != nil {
		return nil, fmt.Errorf("open inference engine: %w", err)
	}
	rt := &Runtime{Engine: engine, Probe: newProbe(s.LLM)}

	if strings.TrimSpace(s.Weather.APIKey) != "" {
		if rt.Weather, err = external.NewWeatherClient(s.Weather); err != nil {
			return nil, rt.closeWith(fmt.Errorf("weather client: %w", err))
		}
	} else {
		logx.Warn().Msg("OPENWEATHER_API_KEY is not set; weather requests will fail")
	}

	if strings.TrimSpace(s.News.APIKey) != "" {
		if rt.News, err = external.NewNewsClient(s.News); err != nil {
			return nil, rt.closeWith(fmt.Errorf("news client: %w", err))
		}
	} else {
		logx.Warn().Msg("NEWS_API_KEY is not set; news requests will fail")
	}

	if strings.TrimSpace(s.Speech.APIKey) != "" {
		if rt.Speech, err = tts.New(s.Speech); err != nil {
			return nil, rt.closeWith(fmt.Errorf("tts: %w", err))
		}
	}

	if strings.TrimSpace(s.App.DatabaseURL) != "" {
		db, err := postgres.Open(ctx, postgres.Config{URL: s.App.DatabaseURL})
		if err != nil {
			return nil, rt.closeWith(err)
		}
		rt.db = db
		if rt.History, err = history.NewBunStore(db); err != nil {
			return nil, rt.closeWith(err)
		}
		if err := rt.History.Init(ctx); err != nil {
			return nil, rt.closeWith(err)
		}
	}

	services := tool.Services{}
	if rt.Weather != nil {
		services.Weather = rt.Weather
	}
	if rt.News != nil {
		services.News = rt.News
	}
	rt.Orchestrator, err = orchestrator.New(llm.NewResponder(engine, s.LLM.Budget()), services)
	if err != nil {
		return nil, rt.closeWith(err)
	}
	return rt, nil
}

// Router exposes the runtime through the HTTP API.
func (rt *Runtime) Router(maxBodyBytes int64) http.Handler {
	services := httpapi.Services{
		Assistant:           rt.Orchestrator,
		MaxRequestBodyBytes: maxBodyBytes,
	}
	if rt.Weather != nil {
		services.Weather = rt.Weather
	}
	if rt.News != nil {
		services.News = rt.News
	}
	if rt.Speech != nil {
		services.Speech = rt.Speech
	}
	if rt.History != nil {
		services.History = rt.History
	}
	return httpapi.NewRouter(services)
}

func (rt *Runtime) Close() error {
	var errs []error
	if rt.Engine != nil {
		errs = append(errs, rt.Engine.Close())
	}
	if rt.db != nil {
		errs = append(errs, rt.db.Close())
	}
	return errors.Join(errs...)
}

func (rt *Runtime) closeWith(err error) error {
	return errors.Join(err, rt.Close())
}

func newProbe(cfg llm.Config) ReadinessProbe {
	if !strings.EqualFold(strings.TrimSpace(cfg.Provider), llm.ProviderOpenAI) {
		return nil
	}
	lcfg := cfg.LlamaCpp()
	client := llamacppx.NewClient(lcfg)
	return func(ctx context.Context) error {
		return llamacppx.Probe(ctx, client, lcfg.Model)
	}
}
