package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"starscape-server/internal/shared/config"
	"starscape-server/internal/shared/errors"
	"starscape-server/internal/shared/response"
	"starscape-server/internal/universe"
)

type UniverseHandler struct {
	service *universe.Service
	logger  *slog.Logger
}

func NewUniverseHandler(service *universe.Service, logger *slog.Logger) *UniverseHandler {
	return &UniverseHandler{
		service: service,
		logger:  logger,
	}
}

// GetView handles GET /api/universe/view?x=&y=&w=&h=
func (h *UniverseHandler) GetView(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "get_view")

	x, y, err := parsePosition(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	width := parseFloatParam(r, "w", 0)
	height := parseFloatParam(r, "h", 0)

	view := h.service.ViewAround(x, y, width, height)
	response.Success(w, http.StatusOK, view)
}

// UpdatePosition handles POST /api/universe/position
func (h *UniverseHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "update_position")

	var body struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	update := h.service.UpdateActive(body.X, body.Y)
	response.Success(w, http.StatusOK, update)
}

// GetStatus handles GET /api/universe/status
func (h *UniverseHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, h.service.EngineStatus())
}

// GetShareLink handles GET /api/universe/share?x=&y=
func (h *UniverseHandler) GetShareLink(w http.ResponseWriter, r *http.Request) {
	x := parseFloatParam(r, "x", 0)
	y := parseFloatParam(r, "y", 0)
	link := h.service.ShareLink(config.GlobalConfig.Frontend.URL, x, y)
	response.Success(w, http.StatusOK, map[string]string{
		"seed": h.service.Seed(),
		"url":  link,
	})
}

// GetObject handles GET /api/objects/{key}
func (h *UniverseHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "get_object")

	key := r.PathValue("key")
	if key == "" {
		response.Error(w, r, logger, errors.Validation("object key is required"))
		return
	}

	lo, err := h.service.ObjectDetail(key)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"key":         lo.ID.String(),
		"kind":        lo.ID.Kind,
		"type_name":   lo.TypeName,
		"x":           lo.X,
		"y":           lo.Y,
		"pair_id":     lo.PairID,
		"designation": lo.Designation,
	})
}

func parsePosition(r *http.Request) (float64, float64, error) {
	xStr := r.URL.Query().Get("x")
	yStr := r.URL.Query().Get("y")
	if xStr == "" || yStr == "" {
		return 0, 0, errors.Validation("query parameters x and y are required")
	}
	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		return 0, 0, errors.Validationf("invalid x coordinate %q", xStr)
	}
	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		return 0, 0, errors.Validationf("invalid y coordinate %q", yStr)
	}
	return x, y, nil
}

func parseFloatParam(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
