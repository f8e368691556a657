package usecase

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/pkg/utils"
)

const (
	promptTextPreviewChars = 500
	promptHTMLSampleChars  = 2000
)

const systemPrompt = "You are an expert web developer who recreates websites as a single self-contained HTML document."

var promptTemplate = template.Must(template.New("prompt").Parse(`You are an expert web developer tasked with recreating a website based on scraped data.

Website Information:
- Title: {{.Title}}
{{- if .SiteName}}
- Site name: {{.SiteName}}{{end}}
{{- if .Description}}
- Description: {{.Description}}{{end}}
- URL: {{.URL}}

Content Structure:
- Main headings: {{.Headings}}
- Text content preview: {{.TextPreview}}...

Visual Elements:
- Images found: {{.ImageCount}} images
- Links found: {{.LinkCount}} links
{{- if .HasScreenshot}}
- A screenshot of the original page is attached. Match its layout, colors and spacing.{{end}}

HTML Structure Sample:
{{.HTMLSample}}

Please create a complete, modern HTML page that recreates this website. Requirements:
1. Use semantic HTML5 structure
2. Include comprehensive inline CSS styling
3. Make it responsive and mobile-friendly
4. Use modern web design principles
5. Include proper typography and spacing
6. Add hover effects and smooth transitions
7. Use a professional color scheme
8. Ensure good contrast and readability

Focus on making it visually appealing and functional. Return ONLY the complete HTML code without any explanations or markdown formatting.`))

type promptData struct {
	Title         string
	SiteName      string
	Description   string
	URL           string
	Headings      string
	TextPreview   string
	ImageCount    int
	LinkCount     int
	HasScreenshot bool
	HTMLSample    string
}

// BuildPrompt renders the generation prompt for a scrape record.
func BuildPrompt(record *entity.ScrapeRecord) string {
	data := promptData{
		Title:         record.Title,
		SiteName:      record.SiteName,
		Description:   record.Description,
		URL:           record.URL,
		Headings:      formatHeadings(record.Headings),
		TextPreview:   utils.Truncate(record.TextContent, promptTextPreviewChars),
		ImageCount:    len(record.Images),
		LinkCount:     len(record.Links),
		HasScreenshot: record.ScreenshotBase64 != "",
		HTMLSample:    utils.Truncate(record.HTMLStructure, promptHTMLSampleChars),
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		// Only reachable if the template and promptData disagree.
		panic(fmt.Sprintf("prompt template: %v", err))
	}
	return b.String()
}

func formatHeadings(headings []entity.Heading) string {
	if len(headings) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(headings))
	for _, h := range headings {
		parts = append(parts, fmt.Sprintf("H%d: %s", h.Level, h.Text))
	}
	return strings.Join(parts, "; ")
}
