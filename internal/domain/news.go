package domain

import (
	"net/url"
	"strings"
	"time"
)

// NewsItem is the core entity flowing through the pipeline: fetched raw,
// mutated by translation, annotated by publishing, frozen into history.
// The JSON shape matches the persisted state contract.
type NewsItem struct {
	Title        string                    `json:"title"`
	Summary      string                    `json:"description"`
	Body         string                    `json:"full_content"`
	ImageURL     string                    `json:"image,omitempty"`
	SourceURL    string                    `json:"url"`
	OriginDomain string                    `json:"source_domain,omitempty"`
	PublishedAt  time.Time                 `json:"timestamp"`
	FailedFields []string                  `json:"translation_failed,omitempty"`
	Publish      map[string]PublishOutcome `json:"publish_status,omitempty"`
}

// Identity is the stable dedup key. Items without one are discarded
// before dedup and never reach history.
func (n NewsItem) Identity() string {
	return strings.TrimSpace(n.SourceURL)
}

// FieldFailed reports whether translation of the named field failed.
func (n NewsItem) FieldFailed(field string) bool {
	for _, f := range n.FailedFields {
		if f == field {
			return true
		}
	}
	return false
}

// SetOutcome records one destination's publish result on the item.
func (n *NewsItem) SetOutcome(destination string, outcome PublishOutcome) {
	if n.Publish == nil {
		n.Publish = map[string]PublishOutcome{}
	}
	n.Publish[destination] = outcome
}

// DomainOf extracts the host part of a source URL for destination routing.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// Translatable field names, matching the persisted JSON keys.
const (
	FieldTitle   = "title"
	FieldSummary = "description"
	FieldBody    = "full_content"
)

// TranslationOutcome is the result of translating one field. A successful
// outcome may carry empty text (blank input); that is distinct from Failed.
type TranslationOutcome struct {
	Text   string
	Failed bool
}

// Translated wraps generated text into a successful outcome.
func Translated(text string) TranslationOutcome {
	return TranslationOutcome{Text: text}
}

// TranslationFailed marks a field whose translation could not be obtained.
var TranslationFailed = TranslationOutcome{Failed: true}

// PublishStatus enumerates per-destination results.
type PublishStatus string

const (
	StatusPosted  PublishStatus = "posted"
	StatusFailed  PublishStatus = "failed"
	StatusSkipped PublishStatus = "skipped"
)

// PublishOutcome is one destination's verdict for one item.
type PublishOutcome struct {
	Status PublishStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// Posted reports success.
func Posted() PublishOutcome { return PublishOutcome{Status: StatusPosted} }

// Failed records a destination error without blocking other destinations.
func Failed(reason string) PublishOutcome {
	return PublishOutcome{Status: StatusFailed, Reason: reason}
}

// Skipped records an item the destination never attempted.
func Skipped(reason string) PublishOutcome {
	return PublishOutcome{Status: StatusSkipped, Reason: reason}
}

// HistoryTimeFormat is the timestamp layout of the persisted state file.
const HistoryTimeFormat = "2006-01-02 15:04:05"

// RunHistory is the durable record of all previously processed items,
// newest first. No two entries share an identity.
type RunHistory struct {
	Timestamp string     `json:"timestamp"`
	Items     []NewsItem `json:"all_news"`
}

// RunSummary reports one run's counts. It is never persisted.
type RunSummary struct {
	Fetched          int
	Discarded        int
	TranslatedOK     int
	TranslationsLost int
	NewItems         int
	Published        map[string]int
	PublishFailed    map[string]int
	PublishSkipped   map[string]int
	StateSaved       bool
	SaveError        string
}

// NewRunSummary initializes the per-destination counters.
func NewRunSummary() RunSummary {
	return RunSummary{
		Published:      map[string]int{},
		PublishFailed:  map[string]int{},
		PublishSkipped: map[string]int{},
	}
}

// Count registers a publish outcome under its destination.
func (s *RunSummary) Count(destination string, outcome PublishOutcome) {
	switch outcome.Status {
	case StatusPosted:
		s.Published[destination]++
	case StatusFailed:
		s.PublishFailed[destination]++
	case StatusSkipped:
		s.PublishSkipped[destination]++
	}
}
