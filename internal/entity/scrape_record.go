package entity

// Heading is a single h1..h6 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ScrapeRecord is the trimmed view of a page that goes into the prompt.
// It lives for one request only.
type ScrapeRecord struct {
	URL              string
	Title            string
	Description      string
	SiteName         string
	HTMLStructure    string
	TextContent      string
	Links            []string
	Images           []string
	Headings         []Heading
	ScreenshotBase64 string
}
