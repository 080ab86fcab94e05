package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/external"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/tool"
	"github.com/tanpawarit/Chative-Personal-Assistant/pkg/tts"
)

type weatherRequest struct {
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

type newsRequest struct {
	Topic     string   `json:"topic"`
	Country   string   `json:"country"`
	Countries []string `json:"countries"`
	Keywords  string   `json:"keywords"`
}

type newsArticle struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Country string `json:"country"`
}

type newsResponse struct {
	Articles []newsArticle `json:"articles"`
}

type ttsRequest struct {
	Text            string  `json:"text"`
	VoiceID         string  `json:"voice_id"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	NoCache         bool    `json:"no_cache"`
}

func (h *handlers) handleWeather(w http.ResponseWriter, r *http.Request) {
	if h.services.Weather == nil {
		writeMappedError(w, errNotConfigured)
		return
	}

	var req weatherRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeMappedError(w, err)
		return
	}
	if strings.TrimSpace(req.City) == "" {
		writeMappedError(w, invalidRequestError("city is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tool.WeatherTimeout)
	defer cancel()

	report, err := h.services.Weather.LookupCity(ctx, req.City, req.CountryCode)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handlers) handleNews(w http.ResponseWriter, r *http.Request) {
	if h.services.News == nil {
		writeMappedError(w, errNotConfigured)
		return
	}

	req := newsRequest{Topic: tool.DefaultTopic}
	if err := decodeJSONBody(r, &req); err != nil {
		writeMappedError(w, err)
		return
	}

	countries := req.Countries
	if len(countries) == 0 && strings.TrimSpace(req.Country) != "" {
		countries = []string{req.Country}
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = tool.DefaultTopic
	}

	ctx, cancel := context.WithTimeout(r.Context(), tool.NewsTimeout)
	defer cancel()

	articles, err := h.services.News.Headlines(ctx, external.HeadlinesQuery{
		Topic:     topic,
		Countries: countries,
		Keywords:  req.Keywords,
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewsResponse(articles))
}

func toNewsResponse(articles []contractx.Article) newsResponse {
	out := newsResponse{Articles: make([]newsArticle, 0, len(articles))}
	for _, a := range articles {
		out.Articles = append(out.Articles, newsArticle{
			Title:   a.Title,
			Source:  a.Source,
			URL:     a.URL,
			Country: a.Country,
		})
	}
	return out
}

func (h *handlers) handleTTS(w http.ResponseWriter, r *http.Request) {
	if h.services.Speech == nil {
		writeMappedError(w, errNotConfigured)
		return
	}

	req := ttsRequest{
		Stability:       tts.DefaultStability,
		SimilarityBoost: tts.DefaultSimilarityBoost,
	}
	if err := decodeJSONBody(r, &req); err != nil {
		writeMappedError(w, err)
		return
	}

	result, err := h.services.Speech.Synthesize(r.Context(), tts.Request{
		Text:            req.Text,
		VoiceID:         req.VoiceID,
		Stability:       req.Stability,
		SimilarityBoost: req.SimilarityBoost,
		SkipCache:       req.NoCache,
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}

	cache := "MISS"
	if result.Cached {
		cache = "HIT"
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Audio)
}
