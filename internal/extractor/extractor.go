package extractor

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/pkg/utils"
	"golang.org/x/net/html"
)

const untitled = "Untitled"

// Limits caps the size of everything copied into a scrape record.
type Limits struct {
	MaxHTMLChars        int
	MaxTextChars        int
	MaxLinks            int
	MaxImages           int
	MaxHeadingsPerLevel int
}

// DefaultLimits are sized to keep the prompt well under model context limits.
func DefaultLimits() Limits {
	return Limits{
		MaxHTMLChars:        8000,
		MaxTextChars:        3000,
		MaxLinks:            15,
		MaxImages:           15,
		MaxHeadingsPerLevel: 3,
	}
}

// Extract parses a captured page and builds the scrape record for it.
func Extract(capture *entity.PageCapture, limits Limits) (*entity.ScrapeRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(capture.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	og := opengraph.NewOpenGraph()
	// OpenGraph data is a bonus; a page without it still clones.
	_ = og.ProcessHTML(strings.NewReader(capture.HTML))

	doc.Find("script, style, noscript").Remove()

	base := baseURL(capture)
	record := &entity.ScrapeRecord{
		URL:         capture.URL,
		Title:       pageTitle(doc, capture, og),
		Description: description(doc, og),
		SiteName:    strings.TrimSpace(og.SiteName),
		Links:       collectAttr(doc, "a[href]", "href", base, limits.MaxLinks),
		Images:      collectAttr(doc, "img[src]", "src", base, limits.MaxImages),
		Headings:    headings(doc, limits.MaxHeadingsPerLevel),
	}

	markup, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render cleaned html: %w", err)
	}
	record.HTMLStructure = utils.Truncate(markup, limits.MaxHTMLChars)

	textRoot := doc.Find("body")
	if textRoot.Length() == 0 {
		textRoot = doc.Selection
	}
	record.TextContent = utils.Truncate(visibleText(textRoot), limits.MaxTextChars)

	if len(capture.Screenshot) > 0 {
		record.ScreenshotBase64 = base64.StdEncoding.EncodeToString(capture.Screenshot)
	}

	return record, nil
}

func baseURL(capture *entity.PageCapture) *url.URL {
	for _, raw := range []string{capture.FinalURL, capture.URL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u
		}
	}
	return nil
}

func pageTitle(doc *goquery.Document, capture *entity.PageCapture, og *opengraph.OpenGraph) string {
	candidates := []string{
		doc.Find("title").First().Text(),
		capture.Title,
		og.Title,
	}
	for _, c := range candidates {
		if t := strings.TrimSpace(c); t != "" {
			return t
		}
	}
	return untitled
}

func description(doc *goquery.Document, og *opengraph.OpenGraph) string {
	if d := strings.TrimSpace(og.Description); d != "" {
		return d
	}
	content, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// collectAttr returns up to limit non-empty attribute values, resolved against base.
func collectAttr(doc *goquery.Document, selector, attr string, base *url.URL, limit int) []string {
	out := []string{}
	if limit <= 0 {
		return out
	}
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		val, _ := s.Attr(attr)
		val = strings.TrimSpace(val)
		if val == "" {
			return true
		}
		if base != nil {
			if abs, err := utils.ToAbsoluteURL(base, val); err == nil {
				val = abs
			}
		}
		out = append(out, val)
		return len(out) < limit
	})
	return out
}

// headings walks h1..h6 in level order, keeping at most perLevel of each.
func headings(doc *goquery.Document, perLevel int) []entity.Heading {
	out := []entity.Heading{}
	if perLevel <= 0 {
		return out
	}
	for level := 1; level <= 6; level++ {
		taken := 0
		doc.Find(fmt.Sprintf("h%d", level)).EachWithBreak(func(i int, s *goquery.Selection) bool {
			text := visibleText(s)
			if text == "" {
				return true
			}
			out = append(out, entity.Heading{Level: level, Text: text})
			taken++
			return taken < perLevel
		})
	}
	return out
}

// visibleText joins every text node under sel with single spaces.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
