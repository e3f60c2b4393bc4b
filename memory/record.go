package memory

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Record is a durable memory entry. The embedding vector is internal to the
// store and is never part of the external representation.
type Record struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordSummary is a record without its content, as returned by List.
type RecordSummary struct {
	ID        string    `json:"id"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary strips the content from a record.
func (r *Record) Summary() RecordSummary {
	return RecordSummary{
		ID:        r.ID,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// SearchResult pairs a record with its similarity score in [0, 1].
type SearchResult struct {
	Record *Record `json:"record"`
	Score  float64 `json:"score"`
}

// Update describes a partial record update. A nil Content leaves the content
// unchanged; a nil Metadata leaves the metadata unchanged. At least one must
// be set.
type Update struct {
	Content  *string
	Metadata Metadata
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return goerr.New("content cannot be empty", goerr.T(TagValidation))
	}
	return nil
}
