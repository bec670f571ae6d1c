package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"spirit-bot/internal/metrics"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrDuplicate         = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyItems        = errors.New("order has no items")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrTotalMismatch     = errors.New("total does not match items and delivery")
)

type Service struct {
	storage Storage
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		tracer:  otel.Tracer("spirit-bot/orders"),
		now:     time.Now,
	}
}

// PlaceOrder commits a new order with status new. The cost snapshot is fixed
// here: items_cost is the sum of item snapshots and total adds the delivery cost.
// When the external id is already known the stored order is returned and created is false.
func (s *Service) PlaceOrder(ctx context.Context, in NewOrder) (order *Order, created bool, err error) {
	ctx, span := s.tracer.Start(ctx, "orders.PlaceOrder", trace.WithAttributes(
		attribute.String("order.source", string(in.Source)),
		attribute.String("order.external_id", in.ExternalID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	itemsCost, err := validateNewOrder(in)
	if err != nil {
		return nil, false, err
	}

	total := itemsCost + in.DeliveryCost
	if in.ExpectedTotal != nil && *in.ExpectedTotal != total {
		return nil, false, errors.Wrapf(ErrTotalMismatch, "expected %d, computed %d", *in.ExpectedTotal, total)
	}

	if in.ExternalID == "" {
		in.ExternalID = uuid.NewString()
	} else {
		existing, err := s.storage.GetOrder(ctx, GetCriteria{ExternalID: lo.ToPtr(in.ExternalID)})
		if err != nil {
			return nil, false, errors.Wrap(err, "get order by external id")
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	order, err = s.storage.CreateOrder(ctx, Order{
		ExternalID:   in.ExternalID,
		Source:       in.Source,
		UserID:       in.UserID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Phone:        strings.TrimSpace(in.Phone),
		Items:        in.Items,
		Address:      strings.TrimSpace(in.Address),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		DeliveryTime: strings.TrimSpace(in.DeliveryTime),
		Comment:      strings.TrimSpace(in.Comment),
		ZoneID:       in.ZoneID,
		DeliveryCost: in.DeliveryCost,
		ItemsCost:    itemsCost,
		Total:        total,
		Status:       StatusNew,
	})
	if errors.Is(err, ErrDuplicate) {
		// lost a race with the same external id
		existing, getErr := s.storage.GetOrder(ctx, GetCriteria{ExternalID: lo.ToPtr(in.ExternalID)})
		if getErr != nil {
			return nil, false, errors.Wrap(getErr, "get order by external id")
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "create order")
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.Int64("order.total", order.Total))
	metrics.OrdersCreatedTotal.WithLabelValues(string(order.Source)).Inc()

	return order, true, nil
}

// Transition moves the order to status to along the lifecycle graph.
// A concurrent change between the read and the write is reported as ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, id int64, to Status) (order *Order, err error) {
	ctx, span := s.tracer.Start(ctx, "orders.Transition", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status.to", string(to)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(to) {
		metrics.OrderTransitionsRejectedTotal.Inc()
		return current, errors.Wrapf(ErrInvalidTransition, "%s -> %s", current.Status, to)
	}

	updated, err := s.storage.UpdateOrderStatus(ctx, id, current.Status, to)
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	if !updated {
		metrics.OrderTransitionsRejectedTotal.Inc()
		return current, errors.Wrapf(ErrInvalidTransition, "order %d changed concurrently", id)
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(to)).Inc()

	return s.GetOrder(ctx, id)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	order, err := s.storage.GetOrder(ctx, GetCriteria{ID: lo.ToPtr(id)})
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if order == nil {
		return nil, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return order, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64, limit int) ([]*Order, error) {
	return s.storage.ListOrders(ctx, ListCriteria{UserID: lo.ToPtr(userID), Limit: limit})
}

// ListActive returns orders that still wait for an admin action, newest first.
func (s *Service) ListActive(ctx context.Context, limit int) ([]*Order, error) {
	return s.storage.ListOrders(ctx, ListCriteria{
		Statuses: []Status{StatusNew, StatusConfirmed, StatusPreparing, StatusDelivery},
		Limit:    limit,
	})
}

// Today summarizes orders created since local midnight.
func (s *Service) Today(ctx context.Context) (*DaySummary, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.storage.SummarizeOrders(ctx, from, from.AddDate(0, 0, 1))
}

func validateNewOrder(in NewOrder) (int64, error) {
	if in.Source != SourceTelegram && in.Source != SourceWeb {
		return 0, errors.Wrapf(ErrInvalidOrder, "source %q", in.Source)
	}
	if len(in.Items) == 0 {
		return 0, ErrEmptyItems
	}
	if strings.TrimSpace(in.Phone) == "" {
		return 0, errors.Wrap(ErrInvalidOrder, "phone is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return 0, errors.Wrap(ErrInvalidOrder, "address is required")
	}
	if in.DeliveryCost < 0 || in.DeliveryCost > MaxAmount {
		return 0, errors.Wrap(ErrInvalidOrder, "delivery cost out of range")
	}

	var itemsCost int64
	for _, item := range in.Items {
		if strings.TrimSpace(item.Name) == "" {
			return 0, errors.Wrap(ErrInvalidOrder, "item name is required")
		}
		if item.Price < 0 || item.Price > MaxAmount || item.Quantity < 1 || item.Quantity > MaxQuantity {
			return 0, errors.Wrapf(ErrInvalidOrder, "item %q has invalid price or quantity", item.Name)
		}
		itemsCost += item.Cost()
		if itemsCost > MaxAmount {
			return 0, errors.Wrap(ErrInvalidOrder, "items cost out of range")
		}
	}

	return itemsCost, nil
}
