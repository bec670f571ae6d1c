package orders

import "time"

type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusDelivery  Status = "delivery"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions is the full lifecycle graph. Anything not listed is rejected.
var transitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusDelivery},
	StatusDelivery:  {StatusCompleted},
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusNew, StatusConfirmed, StatusPreparing, StatusDelivery, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// Next lists the statuses reachable from s in one admin action.
func (s Status) Next() []Status {
	return transitions[s]
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

type Source string

const (
	SourceTelegram Source = "telegram"
	SourceWeb      Source = "web"
)

// Upper bounds for amounts in whole baht and for item quantities.
const (
	MaxAmount   int64 = 1_000_000_000
	MaxQuantity       = 10_000
)

// Item is the price snapshot taken when the item was added to the order.
type Item struct {
	ProductID *int64 `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

func (i Item) Cost() int64 {
	return i.Price * int64(i.Quantity)
}

type Order struct {
	ID           int64
	ExternalID   string
	Source       Source
	UserID       *int64
	CustomerName string
	Phone        string
	Items        []Item
	Address      string
	Latitude     *float64
	Longitude    *float64
	DeliveryTime string
	Comment      string
	ZoneID       string
	DeliveryCost int64
	ItemsCost    int64
	Total        int64
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrder is the input of PlaceOrder. Costs are computed from the item
// snapshots; ExpectedTotal, when set, must match the computed total.
type NewOrder struct {
	ExternalID    string
	Source        Source
	UserID        *int64
	CustomerName  string
	Phone         string
	Items         []Item
	Address       string
	Latitude      *float64
	Longitude     *float64
	DeliveryTime  string
	Comment       string
	ZoneID        string
	DeliveryCost  int64
	ExpectedTotal *int64
}

type GetCriteria struct {
	ID         *int64
	ExternalID *string
}

type ListCriteria struct {
	UserID   *int64
	Statuses []Status
	Limit    int
	Offset   int
}

// DaySummary aggregates the orders created in [From, To).
type DaySummary struct {
	Orders  int
	Revenue int64
	Pending int
}
