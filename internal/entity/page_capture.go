package entity

import "time"

// PageCapture is what the headless browser hands back for a single URL.
type PageCapture struct {
	URL        string
	FinalURL   string // after redirects
	Title      string
	HTML       string // rendered DOM, post-JS
	Screenshot []byte // PNG, nil when the screenshot failed
	LoadTime   time.Duration
}
