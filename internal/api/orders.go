package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"spirit-bot/internal/stories/orders"
)

const maxOrderBodyBytes = 1 << 20

// requiredOrderFields are checked in this order, the first missing one is reported.
var requiredOrderFields = []string{"orderId", "name", "phone", "items", "address", "location", "time", "total"}

var errSubtotalMismatch = errors.New("subtotal does not match items")

type orderItemRequest struct {
	Name     string `json:"name"`
	Price    amount `json:"price"`
	Quantity int    `json:"quantity"`
}

type orderRequest struct {
	OrderID  json.RawMessage    `json:"orderId"`
	Name     string             `json:"name"`
	Phone    string             `json:"phone"`
	Items    []orderItemRequest `json:"items"`
	Address  string             `json:"address"`
	Location json.RawMessage    `json:"location"`
	Time     string             `json:"time"`
	Total    amount             `json:"total"`
	Comment  string             `json:"comment"`
	Subtotal *amount            `json:"subtotal"`
	Delivery *amount            `json:"delivery"`
	Zone     string             `json:"zone"`
}

type coordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type createOrderResponse struct {
	Success bool            `json:"success"`
	OrderID json.RawMessage `json:"orderId"`
	Message string          `json:"message"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxOrderBodyBytes))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		h.respondWithError(w, http.StatusBadRequest, "No data provided")
		return
	}
	for _, field := range requiredOrderFields {
		if _, ok := fields[field]; !ok {
			h.respondWithError(w, http.StatusBadRequest, "Missing required field: "+field)
			return
		}
	}

	if err := checkAmounts(fields); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req orderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Debug("Failed to decode order request", "error", err)
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	in, err := req.toNewOrder()
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, created, err := h.orders.PlaceOrder(r.Context(), in)
	switch {
	case errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrEmptyItems),
		errors.Is(err, orders.ErrTotalMismatch):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("Failed to place web order", "external_id", in.ExternalID, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	message := "Order saved successfully"
	if created {
		h.logger.Info("Web order placed", "order_id", order.ID, "external_id", order.ExternalID, "total", order.Total)
		if err := h.notifier.NotifyNewOrder(r.Context(), order); err != nil {
			h.logger.Error("Failed to notify operator", "order_id", order.ID, "error", err)
		}
	} else {
		message = "Order already saved"
	}

	h.respondWithJSON(w, http.StatusOK, createOrderResponse{
		Success: true,
		OrderID: req.OrderID,
		Message: message,
	})
}

func (req orderRequest) toNewOrder() (orders.NewOrder, error) {
	externalID, err := parseOrderID(req.OrderID)
	if err != nil {
		return orders.NewOrder{}, err
	}

	items := lo.Map(req.Items, func(item orderItemRequest, _ int) orders.Item {
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		return orders.Item{Name: strings.TrimSpace(item.Name), Price: int64(item.Price), Quantity: item.Quantity}
	})

	if req.Subtotal != nil {
		sum := lo.SumBy(items, func(item orders.Item) int64 { return item.Cost() })
		if sum != int64(*req.Subtotal) {
			return orders.NewOrder{}, errors.Wrapf(errSubtotalMismatch, "subtotal %d, items %d", int64(*req.Subtotal), sum)
		}
	}

	in := orders.NewOrder{
		ExternalID:    externalID,
		Source:        orders.SourceWeb,
		CustomerName:  req.Name,
		Phone:         req.Phone,
		Items:         items,
		Address:       req.Address,
		DeliveryTime:  req.Time,
		Comment:       req.Comment,
		ZoneID:        req.Zone,
		DeliveryCost:  int64(lo.FromPtr(req.Delivery)),
		ExpectedTotal: lo.ToPtr(int64(req.Total)),
	}

	if err := applyLocation(&in, req.Location); err != nil {
		return orders.NewOrder{}, err
	}
	return in, nil
}

// checkAmounts names the first money field that is neither a number nor a price string.
func checkAmounts(fields map[string]json.RawMessage) error {
	for _, name := range []string{"total", "subtotal", "delivery"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var a amount
		if err := a.UnmarshalJSON(raw); err != nil {
			return errors.Errorf("Invalid field: %s", name)
		}
	}

	var items []struct {
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(fields["items"], &items); err != nil {
		return nil
	}
	for i, item := range items {
		if len(item.Price) == 0 {
			continue
		}
		var a amount
		if err := a.UnmarshalJSON(item.Price); err != nil {
			return errors.Errorf("Invalid field: items[%d].price", i)
		}
	}
	return nil
}

// parseOrderID accepts the website order id as a JSON string or number.
func parseOrderID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		id = strings.TrimSpace(id)
	} else {
		id = string(bytes.TrimSpace(raw))
		if id == "null" || strings.ContainsAny(id, "{[\"") {
			id = ""
		}
	}
	if id == "" {
		return "", errors.New("Invalid field: orderId")
	}
	return id, nil
}

// applyLocation accepts a free-form string or a {lat,lng} object.
// A string that is not already part of the address is appended to it.
func applyLocation(in *orders.NewOrder, raw json.RawMessage) error {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		if text != "" && !strings.Contains(in.Address, text) {
			in.Address = strings.TrimSpace(in.Address) + "\n📍 " + text
		}
		return nil
	}

	var point coordinates
	if err := json.Unmarshal(raw, &point); err != nil {
		return errors.New("Invalid field: location")
	}
	if point.Lat != nil && point.Lng != nil {
		in.Latitude = point.Lat
		in.Longitude = point.Lng
	}
	return nil
}
