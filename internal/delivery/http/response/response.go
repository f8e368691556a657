package response

import "time"

type CloneResponse struct {
	ClonedHTML   string `json:"cloned_html"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type RootResponse struct {
	Message            string `json:"message"`
	Status             string `json:"status"`
	AnthropicAvailable bool   `json:"anthropic_available"`
}

type HealthResponse struct {
	Status          string            `json:"status"`
	Service         string            `json:"service"`
	AnthropicClient bool              `json:"anthropic_client"`
	EnvironmentVars map[string]bool   `json:"environment_vars"`
	Dependencies    map[string]string `json:"dependencies"`
}

// CloneRecordResponse is a DTO for one history row, mirroring entity.CloneRecord.
type CloneRecordResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	HTMLBytes  int       `json:"html_bytes"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type ClonesResponse struct {
	Clones []CloneRecordResponse `json:"clones"`
	Count  int                   `json:"count"`
}
