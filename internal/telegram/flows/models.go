package flows

import (
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
)

// OrderDraft is the in-session order. Prices are snapshots taken at selection time.
type OrderDraft struct {
	UserID       int64 // internal user id
	TelegramID   int64
	Language     string
	CustomerName string

	Items        []orders.Item
	ZoneID       string
	ZoneName     string
	DeliveryCost int64
	Address      string
	Latitude     *float64
	Longitude    *float64
	Phone        string
	DeliveryTime string
	// set by the "other time" button, unlocks free text in the time step
	AwaitingCustomTime bool
	Comment            string
}

func (d *OrderDraft) ItemsCost() int64 {
	var sum int64
	for _, item := range d.Items {
		sum += item.Cost()
	}
	return sum
}

func (d *OrderDraft) Total() int64 {
	return d.ItemsCost() + d.DeliveryCost
}

// ProductDraft - data for admin create product
type ProductDraft struct {
	Language     string
	Name         string
	Category     products.Category
	Subtype      products.Subtype
	Potency      int
	Price        int64
	Description  string
	SpecialOffer string
}

// EditProductData - data for admin edit product
type EditProductData struct {
	Language    string
	ProductID   int64
	ProductName string
	Field       string
}
