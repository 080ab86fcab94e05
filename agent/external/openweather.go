package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/extract"
)

var _ contractx.WeatherService = (*WeatherClient)(nil)

type WeatherConfig struct {
	APIKey  string        `split_words:"true"`
	BaseURL string        `split_words:"true" default:"https://api.openweathermap.org/data/2.5"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// WeatherClient reads current conditions from OpenWeatherMap in metric units.
type WeatherClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type owmResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

func NewWeatherClient(cfg WeatherConfig, opts ...Option) (*WeatherClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is required", contractx.ErrValidation)
	}
	baseURL, err := parseBaseURL(cfg.BaseURL, "openweather")
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WeatherClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout, opts),
	}, nil
}

func (c *WeatherClient) Lookup(ctx context.Context, location string) (contractx.WeatherReport, error) {
	return c.LookupCity(ctx, location, "")
}

// LookupCity queries "city" or "city,country_code" when a country code is given.
func (c *WeatherClient) LookupCity(ctx context.Context, city string, countryCode string) (contractx.WeatherReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return contractx.WeatherReport{}, fmt.Errorf("%w: city is empty", contractx.ErrMissingArgument)
	}
	query := city
	if cc := strings.TrimSpace(countryCode); cc != "" {
		query = city + "," + cc
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	var raw owmResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/weather?"+params.Encode(), nil, &raw); err != nil {
		return contractx.WeatherReport{}, fmt.Errorf("openweather city=%q: %w", query, err)
	}
	return raw.report()
}

func (r owmResponse) report() (contractx.WeatherReport, error) {
	var missing []string
	if r.Main == nil || r.Main.Temp == nil {
		missing = append(missing, "main.temp")
	}
	if r.Main == nil || r.Main.Humidity == nil {
		missing = append(missing, "main.humidity")
	}
	if len(r.Weather) == 0 || strings.TrimSpace(r.Weather[0].Description) == "" {
		missing = append(missing, "weather[0].description")
	}
	if r.Wind == nil || r.Wind.Speed == nil {
		missing = append(missing, "wind.speed")
	}
	if len(missing) > 0 {
		return contractx.WeatherReport{}, fmt.Errorf("%w: openweather response missing %s",
			contractx.ErrExternalBadResponse, strings.Join(missing, ", "))
	}

	return contractx.WeatherReport{
		Location:    fmt.Sprintf("%s, %s", r.Name, r.Sys.Country),
		Temperature: *r.Main.Temp,
		Conditions:  extract.Capitalize(r.Weather[0].Description),
		Humidity:    *r.Main.Humidity,
		WindSpeed:   *r.Wind.Speed,
	}, nil
}
