package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type catalogResponse struct {
	Services      []catalog.Service      `json:"services"`
	Professionals []catalog.Professional `json:"professionals"`
	Dates         []catalog.Day          `json:"dates"`
	TimeSlots     []model.TimeSlot       `json:"time_slots"`
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, catalogResponse{
		Services:      h.catalog.Services(),
		Professionals: h.catalog.Professionals(),
		Dates:         h.catalog.Days(),
		TimeSlots:     h.catalog.Slots(),
	})
}
