package usecase

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/pkg/utils"
)

const (
	fallbackMaxHeadings  = 5
	fallbackPreviewChars = 400
)

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f8f9fa;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }

        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 2rem 0;
            text-align: center;
            margin-bottom: 2rem;
            border-radius: 10px;
        }

        .header h1 {
            font-size: 2.5rem;
            margin-bottom: 0.5rem;
            font-weight: 700;
        }

        .content {
            background: white;
            padding: 2rem;
            border-radius: 10px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
            margin-bottom: 2rem;
        }

        .content h2 {
            color: #495057;
            margin-bottom: 1rem;
            padding-bottom: 0.5rem;
            border-bottom: 2px solid #e9ecef;
        }

        .preview-text {
            background: #f8f9fa;
            padding: 1rem;
            border-radius: 5px;
            font-style: italic;
            margin: 1rem 0;
        }

        @media (max-width: 768px) {
            .container {
                padding: 10px;
            }

            .header h1 {
                font-size: 2rem;
            }

            .content {
                padding: 1rem;
            }
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p>Website Successfully Cloned</p>
        </div>

        <div class="content">
            <h2>Website Content</h2>
            {{range .Headings}}{{.}}
            {{end}}
            <div class="preview-text">
                <strong>Content Preview:</strong><br>
                {{.Preview}}...
            </div>
        </div>
    </div>
</body>
</html>`))

type fallbackData struct {
	Title    string
	Headings []template.HTML
	Preview  string
}

// RenderFallback produces the fixed template page for a scrape record.
// Title, headings and text are escaped; nothing from the page is trusted as markup.
func RenderFallback(record *entity.ScrapeRecord) string {
	title := record.Title
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}

	data := fallbackData{
		Title:   title,
		Preview: utils.Truncate(record.TextContent, fallbackPreviewChars),
	}

	for i, h := range record.Headings {
		if i == fallbackMaxHeadings {
			break
		}
		level := min(max(h.Level, 1), 6)
		data.Headings = append(data.Headings, template.HTML(fmt.Sprintf("<h%d>%s</h%d>", level, template.HTMLEscapeString(h.Text), level)))
	}

	var b strings.Builder
	if err := fallbackTemplate.Execute(&b, data); err != nil {
		panic(fmt.Sprintf("fallback template: %v", err))
	}
	return b.String()
}
