package knowledge

import "errors"

// VectorDimension is the fixed dimensionality of stored embeddings.
// It must match the embedder output and the VECTOR(768) column in
// db/migrations.
const VectorDimension = 768

// SimilarityThreshold is the minimum cosine similarity for a nearest-neighbor
// match to be accepted as a topic classification. Matches at or below the
// threshold classify as unknown (strict greater-than semantics).
const SimilarityThreshold = 0.3

// Topic is the partition key distinguishing knowledge categories.
type Topic int32

const (
	// TopicGuidance holds platform guidance seeded from the curated corpus.
	TopicGuidance Topic = 1

	// TopicRules holds per-game rules ingested from game-added events.
	TopicRules Topic = 2
)

// Topic labels returned by classification.
const (
	LabelGuidance = "guidance"
	LabelRules    = "rules"
	LabelUnknown  = "unknown"
)

// Label returns the human-readable label for the topic, or LabelUnknown for
// topics outside the static map.
func (t Topic) Label() string {
	switch t {
	case TopicGuidance:
		return LabelGuidance
	case TopicRules:
		return LabelRules
	default:
		return LabelUnknown
	}
}

// Record is one knowledge corpus entry.
//
// Text is the text that was embedded: the concatenated example queries a
// player might ask about the entry. Info is the human-readable payload handed
// to answer generation ("Guidance for {topic}: ..." for guidance, "Rules for
// {game}: ..." for rules). Retrieval matches against Text's embedding but
// surfaces Info.
type Record struct {
	ID        int64
	Topic     Topic
	Text      string
	Info      string
	Embedding []float32
}

// Match is a nearest-neighbor lookup result.
type Match struct {
	Record     Record
	Similarity float64 // cosine similarity, 1 - cosine distance
}

var (
	// ErrNoRecords indicates the corpus has no entries to match against.
	// Callers distinguish this from connectivity failures when deciding how
	// to degrade.
	ErrNoRecords = errors.New("no knowledge records")

	// ErrDuplicateGame indicates the game name is already registered.
	ErrDuplicateGame = errors.New("game already registered")
)
