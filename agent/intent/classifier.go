package intent

import (
	"strings"
	"unicode"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

var (
	weatherKeywords = []string{"weather", "temperature", "forecast", "humid", "climate"}
	newsKeywords    = []string{"news", "headline", "article", "update", "latest"}
)

const (
	calculateKeyword    = "calculate"
	arithmeticOperators = "+-*/"
)

// Classify picks the capability for a prompt. Keyword sets are tested in the fixed order
// weather, news, calculator and the first match wins.
//
// The calculator rule also fires on any operator character next to a digit, so prompts
// such as "call me at 555-1234" are routed to the calculator.
func Classify(prompt string) contractx.Capability {
	lower := strings.ToLower(prompt)

	switch {
	case containsAny(lower, weatherKeywords):
		return contractx.CapabilityWeather
	case containsAny(lower, newsKeywords):
		return contractx.CapabilityNews
	case isCalculation(prompt, lower):
		return contractx.CapabilityCalculator
	default:
		return contractx.CapabilityNone
	}
}

// HasNewsKeyword reports whether the prompt mentions any of the news trigger words.
func HasNewsKeyword(prompt string) bool {
	return containsAny(strings.ToLower(prompt), newsKeywords)
}

func isCalculation(prompt string, lower string) bool {
	if strings.Contains(lower, calculateKeyword) {
		return true
	}
	return strings.ContainsAny(prompt, arithmeticOperators) && strings.IndexFunc(prompt, unicode.IsDigit) >= 0
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
