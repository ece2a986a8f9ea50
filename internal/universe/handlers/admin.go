package handlers

import (
	"log/slog"
	"net/http"

	"starscape-server/internal/chunk"
	"starscape-server/internal/shared/errors"
	"starscape-server/internal/shared/response"
	"starscape-server/internal/universe"
)

// AdminHandler hosts the operations behind admin auth: seed switching,
// discovery reset, and debug object placement.
type AdminHandler struct {
	service *universe.Service
	logger  *slog.Logger
}

func NewAdminHandler(service *universe.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// SetSeed handles POST /api/admin/seed
func (h *AdminHandler) SetSeed(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "set_seed")

	var body struct {
		Seed string `json:"seed"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.SetSeed(r.Context(), body.Seed); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"seed": h.service.Seed()})
}

// Reset handles POST /api/admin/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "reset")
	logger.Info("Resetting discovery history")

	if err := h.service.Reset(r.Context()); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "reset"})
}

// AddDebugObjects handles POST /api/admin/debug-objects
func (h *AdminHandler) AddDebugObjects(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "add_debug_objects")

	var body struct {
		Objects []chunk.DebugObject `json:"objects"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if len(body.Objects) == 0 {
		response.Error(w, r, logger, errors.Validation("at least one object is required"))
		return
	}

	h.service.AddDebugObjects(body.Objects)
	logger.Info("Debug objects queued", "count", len(body.Objects))

	response.Success(w, http.StatusAccepted, map[string]int{"queued": len(body.Objects)})
}
