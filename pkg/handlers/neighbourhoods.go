package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/models"
	"github.com/civilnews/civic-engine/pkg/repositories"
)

// NeighbourhoodsHandler serves the neighbourhood reference data.
type NeighbourhoodsHandler struct {
	neighbourhoods repositories.NeighbourhoodRepository
	logger         *zap.Logger
}

func NewNeighbourhoodsHandler(neighbourhoods repositories.NeighbourhoodRepository, logger *zap.Logger) *NeighbourhoodsHandler {
	return &NeighbourhoodsHandler{neighbourhoods: neighbourhoods, logger: logger.Named("neighbourhoods-handler")}
}

func (h *NeighbourhoodsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/neighbourhoods", h.List)
}

// NeighbourhoodListResponse wraps the full neighbourhood list.
type NeighbourhoodListResponse struct {
	Neighbourhoods []*models.Neighbourhood `json:"neighbourhoods"`
	Count          int                     `json:"count"`
}

func (h *NeighbourhoodsHandler) List(w http.ResponseWriter, r *http.Request) {
	neighbourhoods, err := h.neighbourhoods.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list neighbourhoods", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list neighbourhoods")
		return
	}

	response := NeighbourhoodListResponse{Neighbourhoods: neighbourhoods, Count: len(neighbourhoods)}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode neighbourhoods response", zap.Error(err))
	}
}
