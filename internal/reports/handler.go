package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caravel-dist/caravel-dist/internal/platform/httpx"
)

// Handler serves the read-only report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/customer-revenue", h.customerRevenue)
	r.Get("/stock", h.stockLevels)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) customerRevenue(w http.ResponseWriter, r *http.Request) {
	rowsOut, err := h.service.CustomerRevenue(r.Context())
	if err != nil {
		h.logger.Error("customer revenue report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rowsOut)
}

func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	rowsOut, err := h.service.StockLevels(r.Context())
	if err != nil {
		h.logger.Error("stock report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rowsOut)
}
