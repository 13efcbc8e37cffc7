// Package ground implements the entity grounding guard: it extracts
// candidate game-name mentions from a query and checks them against the
// known-game registry so the assistant never invents answers about games it
// has no rules for.
package ground

import (
	"strings"
	"unicode"
)

// Recognizer finds named-entity spans in text. Implementations wrap an NLP
// pipeline; the guard treats them as opaque.
type Recognizer interface {
	Recognize(text string) []string
}

// Entities returns the lower-cased token set of the query unioned with the
// entity spans the recognizer found. The result is a superset of possible
// game-name mentions; multi-word game names only appear if the recognizer
// returns them as a single span.
func Entities(query string, recognizer Recognizer) map[string]struct{} {
	entities := make(map[string]struct{})

	for _, token := range tokenize(query) {
		entities[token] = struct{}{}
	}

	if recognizer != nil {
		for _, span := range recognizer.Recognize(query) {
			span = strings.ToLower(strings.TrimSpace(span))
			if span != "" {
				entities[span] = struct{}{}
			}
		}
	}

	return entities
}

// IsUnknownGame reports whether none of the extracted entities matches a
// known game name. Matching is case-insensitive equality of whole entities
// against whole names; no fuzzy matching.
func IsUnknownGame(entities map[string]struct{}, knownGames []string) bool {
	for _, name := range knownGames {
		if _, ok := entities[strings.ToLower(name)]; ok {
			return false
		}
	}
	return true
}

// tokenize splits text into lower-cased word tokens, dropping punctuation.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
