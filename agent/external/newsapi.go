package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var _ contractx.NewsService = (*NewsClient)(nil)

const MaxArticles = 3

var ErrUnsupportedCountry = errors.New("unsupported news country")

// Countries accepted by the NewsAPI top-headlines endpoint.
var supportedCountries = map[string]struct{}{
	"ae": {}, "ar": {}, "at": {}, "au": {}, "be": {}, "bg": {}, "br": {}, "ca": {}, "ch": {}, "cn": {},
	"co": {}, "cu": {}, "cz": {}, "de": {}, "eg": {}, "fr": {}, "gb": {}, "gr": {}, "hk": {}, "hu": {},
	"id": {}, "ie": {}, "il": {}, "in": {}, "it": {}, "jp": {}, "kr": {}, "lt": {}, "lv": {}, "ma": {},
	"mx": {}, "my": {}, "ng": {}, "nl": {}, "no": {}, "nz": {}, "ph": {}, "pl": {}, "pt": {}, "ro": {},
	"rs": {}, "ru": {}, "sa": {}, "se": {}, "sg": {}, "si": {}, "sk": {}, "th": {}, "tr": {}, "tw": {},
	"ua": {}, "us": {}, "ve": {}, "za": {},
}

var newsCategories = map[string]struct{}{
	"business": {}, "entertainment": {}, "general": {}, "health": {},
	"science": {}, "sports": {}, "technology": {},
}

type NewsConfig struct {
	APIKey    string        `split_words:"true"`
	BaseURL   string        `split_words:"true" default:"https://newsapi.org/v2"`
	Countries []string      `split_words:"true" default:"us"`
	Timeout   time.Duration `split_words:"true" default:"15s"`
}

// HeadlinesQuery selects top headlines. Topics that are NewsAPI categories are sent
// as the category, anything else as a keyword search.
type HeadlinesQuery struct {
	Topic     string
	Countries []string
	Keywords  string
}

type NewsClient struct {
	baseURL    string
	apiKey     string
	countries  []string
	httpClient *http.Client
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func NewNewsClient(cfg NewsConfig, opts ...Option) (*NewsClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: newsapi api key is required", contractx.ErrValidation)
	}
	baseURL, err := parseBaseURL(cfg.BaseURL, "newsapi")
	if err != nil {
		return nil, err
	}

	countries, err := NormalizeCountries(cfg.Countries)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		countries = []string{"us"}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &NewsClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		countries:  countries,
		httpClient: newHTTPClient(timeout, opts),
	}, nil
}

// NormalizeCountries lower-cases, de-duplicates and validates country codes.
func NormalizeCountries(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := supportedCountries[code]; !ok {
			return nil, fmt.Errorf("%w: %w: %q", contractx.ErrValidation, ErrUnsupportedCountry, code)
		}
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out, nil
}

func (c *NewsClient) Search(ctx context.Context, topic string) ([]contractx.Article, error) {
	return c.Headlines(ctx, HeadlinesQuery{Topic: topic})
}

// Headlines fetches every country concurrently and returns the newest MaxArticles.
func (c *NewsClient) Headlines(ctx context.Context, q HeadlinesQuery) ([]contractx.Article, error) {
	countries, err := NormalizeCountries(q.Countries)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		countries = c.countries
	}

	results := make([][]contractx.Article, len(countries))
	g, gctx := errgroup.WithContext(ctx)
	for i, country := range countries {
		g.Go(func() error {
			articles, err := c.fetchCountry(gctx, country, q)
			if err != nil {
				return err
			}
			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []contractx.Article
	for _, articles := range results {
		merged = append(merged, articles...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if len(merged) > MaxArticles {
		merged = merged[:MaxArticles]
	}
	return merged, nil
}

func (c *NewsClient) fetchCountry(ctx context.Context, country string, q HeadlinesQuery) ([]contractx.Article, error) {
	params := url.Values{}
	params.Set("country", country)

	topic := strings.ToLower(strings.TrimSpace(q.Topic))
	keywords := strings.TrimSpace(q.Keywords)
	if _, ok := newsCategories[topic]; ok {
		params.Set("category", topic)
	} else if topic != "" {
		keywords = strings.TrimSpace(topic + " " + keywords)
	}
	if keywords != "" {
		params.Set("q", keywords)
	}

	header := http.Header{}
	header.Set("X-Api-Key", c.apiKey)

	var raw newsAPIResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/top-headlines?"+params.Encode(), header, &raw); err != nil {
		return nil, fmt.Errorf("newsapi country=%s: %w", country, err)
	}
	if raw.Status != "" && raw.Status != "ok" {
		return nil, fmt.Errorf("%w: newsapi country=%s code=%s: %s",
			contractx.ErrExternalBadResponse, country, raw.Code, raw.Message)
	}

	articles := make([]contractx.Article, 0, len(raw.Articles))
	for _, a := range raw.Articles {
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			// Zero time sorts last; the stable sort keeps the upstream order among these.
			published = time.Time{}
			logx.Debug().
				Err(err).
				Str("country", country).
				Str("title", a.Title).
				Msg("newsapi article has no usable publishedAt")
		}
		articles = append(articles, contractx.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			Country:     country,
			PublishedAt: published,
		})
	}
	return articles, nil
}
