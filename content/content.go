// Package content defines the value types flowing through the
// reconciliation pipeline: the item Kind, the normalized metadata Record,
// and the engagement-ratio tiering.
//
// These are the public contract between the extractor, the appliers, and
// any event consumer. The package holds no DOM references and performs no
// I/O.
package content

import "time"

// Kind is the content-item variant. It decides metadata source keys and
// canonical URL shape.
type Kind string

const (
	KindAnswer  Kind = "answer"
	KindArticle Kind = "article"
)

// Record is the normalized metadata of one content item. It is derived
// fresh on every reconciliation pass and never cached: the host page may
// have re-rendered the item between passes.
//
// Missing fields default to the zero value — an absent count is 0, an
// absent timestamp is nil. Counts are never negative.
type Record struct {
	Kind         Kind       `json:"kind"`
	Title        string     `json:"title,omitempty"`
	Author       string     `json:"author,omitempty"`
	URL          string     `json:"url,omitempty"`
	UpvoteCount  int        `json:"upvote_count"`
	CommentCount int        `json:"comment_count"`
	DateCreated  *time.Time `json:"date_created,omitempty"`
	DateModified *time.Time `json:"date_modified,omitempty"`
}

// Ratio returns the engagement ratio of the record: comments per upvote,
// rounded to two decimal places. Zero upvotes yield 0.00 — insufficient
// signal, not an error.
func (r Record) Ratio() float64 {
	return Ratio(r.CommentCount, r.UpvoteCount)
}

// Tier returns the emphasis tier for the record's counts.
func (r Record) Tier() Tier {
	return SelectTier(r.UpvoteCount, r.Ratio())
}

// TimeLayout is how timestamps are rendered in injected panels.
const TimeLayout = "2006-01-02 15:04"

// FormatTime renders a timestamp as local-time "YYYY-MM-DD HH:MM".
// The zero time renders as the empty string so callers can suppress the
// line entirely.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}
