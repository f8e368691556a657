package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/cloner-service/internal/delivery/http/request"
	"github.com/user/cloner-service/internal/delivery/http/response"
	"github.com/user/cloner-service/internal/usecase"
	"go.uber.org/zap"
)

const (
	serviceName         = "website-cloning-api"
	maxRequestBodyBytes = 1 << 20
	healthCheckTimeout  = 2 * time.Second
)

type Handler struct {
	cloner usecase.Cloner
	// envVars reports which credential variables were set at startup.
	envVars map[string]bool
	logger  *zap.Logger
}

func NewHandler(cloner usecase.Cloner, envVars map[string]bool, logger *zap.Logger) *Handler {
	return &Handler{
		cloner:  cloner,
		envVars: envVars,
		logger:  logger.Named("handler"),
	}
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.RootResponse{
		Message:            "Website Cloning API is running!",
		Status:             "healthy",
		AnthropicAvailable: h.cloner.AIAvailable(),
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	deps := h.cloner.DependencyHealth(ctx)
	resp := response.HealthResponse{
		Status:          "healthy",
		Service:         serviceName,
		AnthropicClient: h.cloner.AIAvailable(),
		EnvironmentVars: h.envVars,
		Dependencies:    deps,
	}

	status := http.StatusOK
	for _, state := range deps {
		if state != "healthy" {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			break
		}
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) HandleCloneWebsite(w http.ResponseWriter, r *http.Request) {
	var req request.CloneRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeCloneError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.writeCloneError(w, "URL is required", http.StatusBadRequest)
		return
	}

	result, err := h.cloner.Clone(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidURL):
			h.writeCloneError(w, "Invalid URL format", http.StatusBadRequest)
		case errors.Is(err, usecase.ErrScrapeFailed):
			reason := strings.TrimPrefix(err.Error(), usecase.ErrScrapeFailed.Error()+": ")
			h.writeCloneError(w, "Failed to scrape website: "+reason, http.StatusInternalServerError)
		default:
			h.logger.Error("Failed to clone website", zap.String("url", req.URL), zap.Error(err))
			h.writeCloneError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, response.CloneResponse{
		ClonedHTML: result.HTML,
		Success:    result.Success,
	})
}

func (h *Handler) HandleRecentClones(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.cloner.Recent(r.Context(), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrHistoryDisabled) {
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to list clone history", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.ClonesResponse{Clones: make([]response.CloneRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Clones = append(resp.Clones, response.CloneRecordResponse{
			ID:         rec.ID,
			URL:        rec.URL,
			Title:      rec.Title,
			Source:     rec.Source,
			HTMLBytes:  rec.HTMLBytes,
			DurationMS: rec.DurationMS,
			CreatedAt:  rec.CreatedAt,
		})
	}
	resp.Count = len(resp.Clones)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeCloneError keeps the clone endpoint's response shape on failures.
func (h *Handler) writeCloneError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.CloneResponse{Success: false, ErrorMessage: message})
}
