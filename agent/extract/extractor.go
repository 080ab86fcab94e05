// Package extract pulls capability arguments out of free-text prompts.
//
// Every extractor is best effort: a prompt without a usable argument yields
// contract.ErrMissingArgument (or an expression error for calculations), never a guess.
package extract

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

const (
	maxPhraseWords   = 3
	calculateKeyword = "calculate"
	allowedExprChars = "0123456789+-*/.() "
)

var (
	locationSeparators = []string{" in ", " near ", " for ", " at ", " weather for "}
	topicSeparators    = []string{" about ", " on ", " regarding ", " for news on ", " news about "}

	// A location phrase ends at the first time qualifier: "paris tomorrow" -> "paris",
	// "berlin this weekend" -> "berlin". A phrase that starts with one names no place.
	timeQualifiers = map[string]struct{}{
		"today":     {},
		"tomorrow":  {},
		"tonight":   {},
		"now":       {},
		"currently": {},
		"later":     {},
		"this":      {},
		"next":      {},
	}
)

// Argument is the structured value a capability handler consumes.
type Argument struct {
	Capability contractx.Capability
	Value      string
}

// Extract returns the argument for the given capability.
func Extract(prompt string, capability contractx.Capability) (Argument, error) {
	switch capability {
	case contractx.CapabilityWeather:
		location, ok := Location(prompt)
		if !ok {
			return Argument{}, fmt.Errorf("%w: location", contractx.ErrMissingArgument)
		}
		return Argument{Capability: capability, Value: location}, nil
	case contractx.CapabilityNews:
		topic, ok := Topic(prompt)
		if !ok {
			return Argument{}, fmt.Errorf("%w: topic", contractx.ErrMissingArgument)
		}
		return Argument{Capability: capability, Value: topic}, nil
	case contractx.CapabilityCalculator:
		expression, err := Expression(prompt)
		if err != nil {
			return Argument{}, err
		}
		return Argument{Capability: capability, Value: expression}, nil
	default:
		return Argument{}, fmt.Errorf("%w: capability=%q takes no argument", contractx.ErrValidation, capability)
	}
}

// Location finds a place name after a separator phrase such as " in " or " near ".
// Without a separator it falls back to the last word of the prompt, accepted only when it
// is capitalised and longer than two characters.
func Location(prompt string) (string, bool) {
	lower := strings.ToLower(prompt)

	for _, sep := range locationSeparators {
		_, after, found := strings.Cut(lower, sep)
		if !found {
			continue
		}
		candidate := cutAt(cutAt(after, "?"), " and ")
		words := untilTimeQualifier(leadingWords(candidate))
		phrase := strings.Join(words, " ")
		if utf8.RuneCountInString(phrase) > 1 {
			return Capitalize(phrase), true
		}
	}

	return lastCapitalizedWord(prompt)
}

// Topic finds a news topic after a separator phrase such as " about " or " on ".
func Topic(prompt string) (string, bool) {
	lower := strings.ToLower(prompt)

	for _, sep := range topicSeparators {
		_, after, found := strings.Cut(lower, sep)
		if !found {
			continue
		}
		words := leadingWords(cutAt(after, "?"))
		if len(words) > 0 {
			return strings.Join(words, " "), true
		}
	}
	return "", false
}

// Expression returns the sanitized arithmetic expression of a calculation prompt.
func Expression(prompt string) (string, error) {
	var raw string
	if _, after, found := strings.Cut(strings.ToLower(prompt), calculateKeyword); found {
		raw = after
	} else if strings.IndexFunc(prompt, unicode.IsLetter) < 0 && strings.ContainsAny(prompt, "+-*/") {
		raw = prompt
	} else {
		return "", contractx.NewExpressionError(prompt, "no calculation expression found after %q", calculateKeyword)
	}

	expression := strings.TrimSpace(Sanitize(raw))
	if expression == "" {
		return "", contractx.NewExpressionError(strings.TrimSpace(raw), "expression is empty after sanitization")
	}
	return expression, nil
}

// Sanitize drops every character outside digits, + - * / . ( ) and space.
func Sanitize(expression string) string {
	var b strings.Builder
	b.Grow(len(expression))
	for _, r := range expression {
		if strings.ContainsRune(allowedExprChars, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func lastCapitalizedWord(prompt string) (string, bool) {
	fields := strings.Fields(prompt)
	if len(fields) == 0 {
		return "", false
	}

	last := strings.TrimRight(fields[len(fields)-1], "?")
	if utf8.RuneCountInString(last) <= 2 {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(last)
	if !unicode.IsUpper(first) {
		return "", false
	}
	return Capitalize(last), true
}

func leadingWords(text string) []string {
	words := strings.Fields(text)
	if len(words) > maxPhraseWords {
		words = words[:maxPhraseWords]
	}
	return words
}

func untilTimeQualifier(words []string) []string {
	for i, w := range words {
		if _, ok := timeQualifiers[w]; ok {
			return words[:i]
		}
	}
	return words
}

func cutAt(text string, sep string) string {
	before, _, _ := strings.Cut(text, sep)
	return before
}

// Capitalize upper-cases the first letter and lower-cases the rest: "new YORK" -> "New york".
func Capitalize(text string) string {
	first, size := utf8.DecodeRuneInString(text)
	if first == utf8.RuneError {
		return text
	}
	return string(unicode.ToTitle(first)) + strings.ToLower(text[size:])
}
