// Package corpus loads the curated guidance seed set and keeps the vector
// store's guidance partition synchronized with it.
package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed guidance.json
var defaultSeed []byte

// Entry is one guidance seed record.
type Entry struct {
	Topic          string   `json:"topic"`
	Steps          []string `json:"steps"`
	ExampleQueries []string `json:"example_queries"`
}

// seedFile is the on-disk seed corpus format.
type seedFile struct {
	Guidance []Entry `json:"guidance"`
}

// Text joins the example queries. This is the text that gets embedded, so
// player questions land near the entry in vector space.
func (e Entry) Text() string {
	return strings.Join(e.ExampleQueries, " ")
}

// Info synthesizes the payload handed to answer generation:
// "Guidance for {topic}: " followed by the joined steps.
func (e Entry) Info() string {
	return fmt.Sprintf("Guidance for %s: %s", e.Topic, strings.Join(e.Steps, " "))
}

// Load reads the seed corpus. An empty path loads the embedded default.
func Load(path string) ([]Entry, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading seed corpus %q: %w", path, err)
		}
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed corpus: %w", err)
	}

	for i, e := range seed.Guidance {
		if e.Topic == "" {
			return nil, fmt.Errorf("seed entry %d: topic is required", i)
		}
		if len(e.ExampleQueries) == 0 {
			return nil, fmt.Errorf("seed entry %d (%s): example_queries is required", i, e.Topic)
		}
	}

	return seed.Guidance, nil
}
