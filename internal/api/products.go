package api

import (
	"net/http"

	"spirit-bot/internal/stories/products"
)

type productResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	THC         int    `json:"thc"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Special     string `json:"special"`
	// Desc duplicates Description for the current website build.
	Desc string `json:"desc"`
}

type productsResponse struct {
	Success  bool              `json:"success"`
	Products []productResponse `json:"products"`
	Count    int               `json:"count"`
}

func toProductResponse(p *products.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Type:        string(p.Subtype),
		THC:         p.Potency,
		Price:       p.Price,
		Description: p.Description,
		Special:     p.SpecialOffer,
		Desc:        p.Description,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.ListAll(r.Context(), false)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		h.respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	resp := productsResponse{
		Success:  true,
		Products: make([]productResponse, 0, len(list)),
	}
	for _, p := range list {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	resp.Count = len(resp.Products)

	h.respondWithJSON(w, http.StatusOK, resp)
}
