package extract

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

func TestLocation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prompt string
		want   string
		found  bool
	}{
		{prompt: "What's the weather in Paris?", want: "Paris", found: true},
		{prompt: "weather in Paris tomorrow?", want: "Paris", found: true},
		{prompt: "weather in London today", want: "London", found: true},
		{prompt: "forecast in Berlin this weekend", want: "Berlin", found: true},
		{prompt: "weather in Paris next week", want: "Paris", found: true},
		// A qualifier straight after the separator names no place, so the user is asked.
		{prompt: "weather in this city", found: false},
		{prompt: "forecast for next week", found: false},
		{prompt: "forecast in new york and boston", want: "New york", found: true},
		{prompt: "temperature near the golden gate bridge park", want: "The golden gate", found: true},
		{prompt: "weather for Tokyo", want: "Tokyo", found: true},
		{prompt: "How humid is it, Madrid?", want: "Madrid", found: true},
		{prompt: "what's the weather", found: false},
		{prompt: "weather in ?", found: false},
		{prompt: "weather in x", found: false},
		{prompt: "weather Ny", found: false},
		{prompt: "", found: false},
	}

	for _, tc := range cases {
		t.Run(tc.prompt, func(t *testing.T) {
			t.Parallel()
			got, ok := Location(tc.prompt)
			if ok != tc.found {
				t.Fatalf("Location(%q) found=%v, want %v (got %q)", tc.prompt, ok, tc.found, got)
			}
			if got != tc.want {
				t.Fatalf("Location(%q) = %q, want %q", tc.prompt, got, tc.want)
			}
		})
	}
}

func TestTopic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prompt string
		want   string
		found  bool
	}{
		{prompt: "latest news about Technology", want: "technology", found: true},
		{prompt: "news on climate change?", want: "climate change", found: true},
		{prompt: "headlines regarding the world cup final today", want: "the world cup", found: true},
		{prompt: "latest headlines", found: false},
		{prompt: "news about ?", found: false},
	}

	for _, tc := range cases {
		t.Run(tc.prompt, func(t *testing.T) {
			t.Parallel()
			got, ok := Topic(tc.prompt)
			if ok != tc.found || got != tc.want {
				t.Fatalf("Topic(%q) = (%q, %v), want (%q, %v)", tc.prompt, got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestExpression(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prompt string
		want   string
	}{
		{prompt: "calculate 2 + 2", want: "2 + 2"},
		{prompt: "Please Calculate (3+4)*2 for me", want: "(3+4)*2"},
		{prompt: "12 * (3 + 4)", want: "12 * (3 + 4)"},
		{prompt: "calculate 10 / 4?", want: "10 / 4"},
	}

	for _, tc := range cases {
		got, err := Expression(tc.prompt)
		if err != nil {
			t.Fatalf("Expression(%q) unexpected error: %v", tc.prompt, err)
		}
		if got != tc.want {
			t.Fatalf("Expression(%q) = %q, want %q", tc.prompt, got, tc.want)
		}
	}
}

func TestExpressionFailures(t *testing.T) {
	t.Parallel()

	for _, prompt := range []string{"calculate something nice", "call me at 555-1234", "calculate"} {
		_, err := Expression(prompt)
		if !errors.Is(err, contractx.ErrInvalidExpression) {
			t.Fatalf("Expression(%q) error = %v, want ErrInvalidExpression", prompt, err)
		}
		var exprErr *contractx.ExpressionError
		if !errors.As(err, &exprErr) {
			t.Fatalf("Expression(%q) error %T is not an ExpressionError", prompt, err)
		}
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"2 + 2",
		"what is 3*(4-1)?",
		"x = 1e10 ** 2; import os",
		"",
		"½ + ٣ + 4",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	if got := Sanitize("x = 1e10 ** 2; import os"); got != "  110 ** 2  " {
		t.Fatalf("unexpected sanitized output %q", got)
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	arg, err := Extract("weather in Paris tomorrow?", contractx.CapabilityWeather)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arg.Value != "Paris" || arg.Capability != contractx.CapabilityWeather {
		t.Fatalf("unexpected argument: %+v", arg)
	}

	if _, err := Extract("what's the weather", contractx.CapabilityWeather); !errors.Is(err, contractx.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
	if _, err := Extract("latest headlines", contractx.CapabilityNews); !errors.Is(err, contractx.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
	if _, err := Extract("hello", contractx.CapabilityNone); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	arg, err = Extract("calculate 2 + 2", contractx.CapabilityCalculator)
	if err != nil || arg.Value != "2 + 2" {
		t.Fatalf("unexpected calculator extraction: %+v, %v", arg, err)
	}
}
