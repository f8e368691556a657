package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/cloner-service/internal/entity"
)

func TestRenderFallback(t *testing.T) {
	record := &entity.ScrapeRecord{
		Title:       "Acme",
		TextContent: strings.Repeat("a", 450),
		Headings: []entity.Heading{
			{Level: 1, Text: "One"},
			{Level: 2, Text: "Two"},
			{Level: 2, Text: "Three"},
			{Level: 3, Text: "Four"},
			{Level: 4, Text: "Five"},
			{Level: 5, Text: "Six"},
		},
	}

	out := RenderFallback(record)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Acme</title>")
	assert.Contains(t, out, "<h1>Acme</h1>")
	assert.Contains(t, out, "Website Successfully Cloned")
	assert.Contains(t, out, "<h1>One</h1>")
	assert.Contains(t, out, "<h2>Three</h2>")
	assert.Contains(t, out, "<h4>Five</h4>")
	assert.NotContains(t, out, "Six")
	assert.Contains(t, out, strings.Repeat("a", 400)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 401))
	assert.Contains(t, out, "@media (max-width: 768px)")
}

func TestRenderFallbackEscapes(t *testing.T) {
	record := &entity.ScrapeRecord{
		Title:       `<script>alert("x")</script>`,
		TextContent: "5 < 6 & <b>bold</b>",
		Headings:    []entity.Heading{{Level: 2, Text: "<img src=x onerror=alert(1)>"}},
	}

	out := RenderFallback(record)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<b>bold</b>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "<h2>&lt;img src=x onerror=alert(1)&gt;</h2>")
	assert.Contains(t, out, "5 &lt; 6 &amp; &lt;b&gt;bold&lt;/b&gt;")
}

func TestRenderFallbackDefaults(t *testing.T) {
	out := RenderFallback(&entity.ScrapeRecord{Headings: []entity.Heading{{Level: 9, Text: "Deep"}}})
	assert.Contains(t, out, "<title>Untitled</title>")
	assert.Contains(t, out, "<h6>Deep</h6>")
}
