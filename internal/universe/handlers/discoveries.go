package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"starscape-server/internal/shared/errors"
	"starscape-server/internal/shared/response"
	"starscape-server/internal/universe"
)

type DiscoveryHandler struct {
	service *universe.Service
	logger  *slog.Logger
}

func NewDiscoveryHandler(service *universe.Service, logger *slog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		service: service,
		logger:  logger,
	}
}

// MarkDiscovery handles POST /api/discoveries
func (h *DiscoveryHandler) MarkDiscovery(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "mark_discovery")

	var body struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if body.Key == "" {
		response.Error(w, r, logger, errors.Validation("object key is required"))
		return
	}

	rec, newly, err := h.service.MarkDiscovered(r.Context(), body.Key)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	status := http.StatusOK
	if newly {
		status = http.StatusCreated
	}
	response.Success(w, status, map[string]interface{}{
		"record": rec,
		"new":    newly,
	})
}

// ListDiscoveries handles GET /api/discoveries?kind=
func (h *DiscoveryHandler) ListDiscoveries(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "list_discoveries")

	records, err := h.service.Discoveries(r.URL.Query().Get("kind"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}

// GetSummary handles GET /api/discoveries/summary
func (h *DiscoveryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, h.service.DiscoverySummary(r.Context()))
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.Validation("request body is required")
		}
		return errors.WrapValidation("invalid request body", err)
	}
	return nil
}
