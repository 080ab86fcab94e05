package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/extract"
	"github.com/tanpawarit/Chative-Personal-Assistant/agent/intent"
)

const (
	WeatherTimeout = 10 * time.Second
	NewsTimeout    = 15 * time.Second

	MaxHeadlines = 3
	DefaultTopic = "general"

	WeatherClarification = "Please specify a location for the weather information (e.g., 'weather in London')."
	NewsClarification    = "Please specify a news topic (e.g., 'news about technology')."
)

// Executor runs the handler for a tool capability and returns the response text.
// Clarifying questions are successful results; failures are typed errors.
// Callers may pass a capability the classifier would not have picked, so the news
// handler checks its trigger words again before defaulting the topic.
type Executor func(ctx context.Context, capability contractx.Capability, prompt string) (string, error)

type Services struct {
	Weather contractx.WeatherService
	News    contractx.NewsService
}

func NewExecutor(services Services) Executor {
	fallback := DefaultExecutor()
	return func(ctx context.Context, capability contractx.Capability, prompt string) (string, error) {
		switch capability {
		case contractx.CapabilityWeather:
			return handleWeather(ctx, services.Weather, prompt)
		case contractx.CapabilityNews:
			return handleNews(ctx, services.News, prompt)
		case contractx.CapabilityCalculator:
			return handleCalculator(prompt)
		default:
			return fallback(ctx, capability, prompt)
		}
	}
}

func DefaultExecutor() Executor {
	return func(_ context.Context, capability contractx.Capability, _ string) (string, error) {
		return "", fmt.Errorf("%w: capability=%s has no handler", contractx.ErrValidation, capability)
	}
}

func handleWeather(ctx context.Context, service contractx.WeatherService, prompt string) (string, error) {
	arg, err := extract.Extract(prompt, contractx.CapabilityWeather)
	if errors.Is(err, contractx.ErrMissingArgument) {
		return WeatherClarification, nil
	}
	if err != nil {
		return "", err
	}
	if service == nil {
		return "", fmt.Errorf("%w: weather service is not configured", contractx.ErrExternalUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, WeatherTimeout)
	defer cancel()

	report, err := service.Lookup(ctx, arg.Value)
	if err != nil {
		return "", asExternalError(err)
	}
	if err := validateWeather(report); err != nil {
		return "", err
	}
	return FormatWeather(arg.Value, report), nil
}

func handleNews(ctx context.Context, service contractx.NewsService, prompt string) (string, error) {
	topic := DefaultTopic
	arg, err := extract.Extract(prompt, contractx.CapabilityNews)
	switch {
	case err == nil:
		topic = arg.Value
	case errors.Is(err, contractx.ErrMissingArgument):
		if !intent.HasNewsKeyword(prompt) {
			return NewsClarification, nil
		}
	default:
		return "", err
	}
	if service == nil {
		return "", fmt.Errorf("%w: news service is not configured", contractx.ErrExternalUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, NewsTimeout)
	defer cancel()

	articles, err := service.Search(ctx, topic)
	if err != nil {
		return "", asExternalError(err)
	}
	return FormatHeadlines(topic, articles), nil
}

func handleCalculator(prompt string) (string, error) {
	arg, err := extract.Extract(prompt, contractx.CapabilityCalculator)
	if err != nil {
		return "", err
	}
	value, err := Calculate(arg.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The result of %s is: %s", arg.Value, FormatNumber(value)), nil
}

func validateWeather(report contractx.WeatherReport) error {
	if strings.TrimSpace(report.Conditions) == "" {
		return fmt.Errorf("%w: weather report is missing conditions", contractx.ErrExternalBadResponse)
	}
	return nil
}

// FormatWeather renders the report under the location the user asked about.
func FormatWeather(location string, report contractx.WeatherReport) string {
	return fmt.Sprintf(
		"Weather in %s:\n- Temperature: %s°C\n- Conditions: %s\n- Humidity: %s%%\n- Wind: %s km/h",
		location,
		FormatNumber(report.Temperature),
		report.Conditions,
		FormatNumber(report.Humidity),
		FormatNumber(report.WindSpeed),
	)
}

// FormatHeadlines numbers at most MaxHeadlines articles as "title (source)".
func FormatHeadlines(topic string, articles []contractx.Article) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No recent news found for the topic '%s'.", topic)
	}
	if len(articles) > MaxHeadlines {
		articles = articles[:MaxHeadlines]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d news headlines on '%s':\n", len(articles), topic)
	for i, article := range articles {
		title := article.Title
		if strings.TrimSpace(title) == "" {
			title = "No Title"
		}
		source := article.Source
		if strings.TrimSpace(source) == "" {
			source = "Unknown Source"
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, title, source)
	}
	return strings.TrimRight(b.String(), "\n")
}

// asExternalError keeps typed adapter errors and treats anything else (timeouts,
// transport failures) as an unavailable collaborator.
func asExternalError(err error) error {
	if errors.Is(err, contractx.ErrExternalUnavailable) || errors.Is(err, contractx.ErrExternalBadResponse) {
		return err
	}
	return fmt.Errorf("%w: %v", contractx.ErrExternalUnavailable, err)
}
