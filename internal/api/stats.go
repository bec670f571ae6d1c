package api

import "net/http"

type statsResponse struct {
	Success bool         `json:"success"`
	Stats   statsPayload `json:"stats"`
}

type statsPayload struct {
	Users        int   `json:"users"`
	Products     int   `json:"products"`
	Views        int   `json:"views"`
	OrdersToday  int   `json:"orders_today"`
	RevenueToday int64 `json:"revenue_today"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	data, err := h.stats.GetStatistics(r.Context(), h.now())
	if err != nil {
		h.logger.Error("Failed to get statistics", "error", err)
		h.respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	h.respondWithJSON(w, http.StatusOK, statsResponse{
		Success: true,
		Stats: statsPayload{
			Users:        data.Users,
			Products:     data.ActiveProducts,
			Views:        data.ViewsToday,
			OrdersToday:  data.OrdersToday,
			RevenueToday: data.RevenueToday,
		},
	})
}
