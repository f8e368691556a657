package entity

import "time"

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// CloneResult is the outcome of cloning one URL.
type CloneResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	HTML    string `json:"html"`
	Success bool   `json:"success"`
	Source  string `json:"source"`
}

// CloneRecord mirrors the `clone_history` PostgreSQL table schema.
type CloneRecord struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	HTMLBytes  int       `json:"html_bytes"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
