package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	apperrors "github.com/modavia/order-service/common/errors"
	"github.com/modavia/order-service/events"
	"github.com/modavia/order-service/models"
	"github.com/modavia/order-service/repository"
)

// EventPublisher pushes order lifecycle events to the message bus.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt events.OrderEvent) error
}

type CreateOrderItem struct {
	ProductID string `json:"product" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	OrderItems      []CreateOrderItem      `json:"orderItems" binding:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod" binding:"required"`
	Notes           string                 `json:"notes"`
}

type ListOrdersRequest struct {
	Page   int
	Limit  int
	Status string // "" or "all" disables the filter
	SortBy string
	Order  string // "asc" or "desc"
}

type OrderListResponse struct {
	Orders      []models.Order `json:"orders"`
	TotalPages  int64          `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Total       int64          `json:"total"`
}

type PaymentUpdateRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required"`
	TransactionID string               `json:"transactionId"`
}

type StatusUpdateRequest struct {
	Status         models.OrderStatus `json:"status" binding:"required"`
	TrackingNumber string             `json:"trackingNumber"`
}

// OrderService implements the order lifecycle: creation with stock
// reservation, status transitions, cancellation with stock release, and
// payment reconciliation.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	policy     AccessPolicy
	transition TransitionPolicy
	events     EventPublisher
	logger     *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, transition TransitionPolicy, publisher EventPublisher, logger *zap.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orders:     orders,
		products:   products,
		transition: transition,
		events:     publisher,
		logger:     logger,
	}
}

// emit publishes a lifecycle event, best-effort. A broker outage must not
// fail the request that triggered the event.
func (s *OrderService) emit(ctx context.Context, evtType string, order *models.Order) {
	evt := events.OrderEvent{
		Type:          evtType,
		OrderID:       order.ID.Hex(),
		UserID:        order.UserID.Hex(),
		Status:        string(order.Status),
		PaymentStatus: string(order.Payment.Status),
		Total:         order.TotalPrice,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.events.PublishOrderEvent(ctx, evt); err != nil {
		s.logger.Warn("Order event not published",
			zap.String("type", evtType),
			zap.String("order_id", evt.OrderID),
			zap.Error(err),
		)
	}
}

// CreateOrder snapshots the requested products into line items, reserves
// stock for each of them, computes the totals and persists the order in
// pending status.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, req *CreateOrderRequest) (*models.Order, *apperrors.Error) {
	if len(req.OrderItems) == 0 {
		return nil, apperrors.InvalidInput("No order items found", nil)
	}
	if !req.PaymentMethod.IsValid() {
		return nil, apperrors.InvalidInput("Unknown payment method: "+string(req.PaymentMethod), nil)
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, reqItem := range req.OrderItems {
		if reqItem.Quantity < 1 {
			return nil, apperrors.InvalidInput("Quantity must be at least 1", nil)
		}

		productID, err := primitive.ObjectIDFromHex(reqItem.ProductID)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid product ID: "+reqItem.ProductID, err)
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, apperrors.NotFound("Product not found: "+reqItem.ProductID, err)
			}
			return nil, apperrors.Internal("Failed to load product", err)
		}

		// Cheap pre-check; the conditional decrement below is authoritative.
		if product.Stock < reqItem.Quantity {
			return nil, apperrors.InsufficientStock(reqItem.ProductID, nil)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  reqItem.Quantity,
			Image:     product.FirstImage(),
		})
	}

	if appErr := s.reserveItems(ctx, items); appErr != nil {
		return nil, appErr
	}

	totals, appErr := CalculateTotals(items)
	if appErr != nil {
		s.releaseItems(ctx, items)
		return nil, appErr
	}

	now := time.Now().UTC()
	order := &models.Order{
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		Payment: models.Payment{
			Method:    req.PaymentMethod,
			Status:    models.PaymentPending,
			UpdatedAt: now,
		},
		Status:   models.StatusPending,
		Notes:    req.Notes,
		IsActive: true,
	}
	totals.Apply(order)

	if err := s.orders.Create(ctx, order); err != nil {
		// Undo the reservations; the order never existed.
		s.releaseItems(ctx, items)
		return nil, apperrors.Internal("Failed to create order", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Int("items", len(items)),
		zap.Float64("total", order.TotalPrice),
	)
	s.emit(ctx, events.OrderCreated, order)
	return order, nil
}

// reserveItems applies one conditional decrement per line item. If a later
// item fails, the decrements already applied are rolled back so that reserve
// is all-or-nothing.
func (s *OrderService) reserveItems(ctx context.Context, items []models.OrderItem) *apperrors.Error {
	for i, item := range items {
		err := s.products.ReserveStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		s.releaseItems(ctx, items[:i])

		if errors.Is(err, repository.ErrInsufficientStock) {
			return apperrors.InsufficientStock(item.ProductID.Hex(), err)
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperrors.NotFound("Product not found: "+item.ProductID.Hex(), err)
		}
		return apperrors.Internal("Failed to reserve stock", err)
	}
	return nil
}

// releaseItems returns stock for every item, best-effort. Failures are
// logged and the remaining items are still released.
func (s *OrderService) releaseItems(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("Failed to release stock",
				zap.String("product_id", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

// GetOrders lists orders: admins see every user's orders, customers only
// their own.
func (s *OrderService) GetOrders(ctx context.Context, principal models.Principal, req ListOrdersRequest) (*OrderListResponse, *apperrors.Error) {
	q := repository.OrderQuery{
		Page:   req.Page,
		Limit:  req.Limit,
		SortBy: req.SortBy,
		Desc:   req.Order != "asc",
	}
	if !s.policy.CanAdminUpdate(principal) {
		userID := principal.ID
		q.UserID = &userID
	}
	if req.Status != "" && req.Status != "all" {
		status := models.OrderStatus(req.Status)
		if !status.IsValid() {
			return nil, apperrors.InvalidInput("Unknown order status: "+req.Status, nil)
		}
		q.Status = status
	}

	orders, total, err := s.orders.Find(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", err)
	}

	limit := req.Limit
	if limit < 1 {
		limit = 10
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	return &OrderListResponse{
		Orders:      orders,
		TotalPages:  (total + int64(limit) - 1) / int64(limit),
		CurrentPage: page,
		Total:       total,
	}, nil
}

// GetMyOrders lists the principal's own orders regardless of role.
func (s *OrderService) GetMyOrders(ctx context.Context, principal models.Principal, req ListOrdersRequest) (*OrderListResponse, *apperrors.Error) {
	scoped := principal
	scoped.Role = models.RoleUser
	return s.GetOrders(ctx, scoped, req)
}

// GetOrderByID returns a single order after an access check.
func (s *OrderService) GetOrderByID(ctx context.Context, principal models.Principal, orderID primitive.ObjectID) (*models.Order, *apperrors.Error) {
	order, appErr := s.findOrder(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}
	if !s.policy.CanRead(order, principal) {
		return nil, apperrors.Forbidden("You do not have permission to view this order", nil)
	}
	return order, nil
}

// UpdateOrderStatus applies an admin-requested status change with its side
// effects: delivered sets the delivery flags once, and a supplied tracking
// number is stored regardless of the target status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, principal models.Principal, orderID primitive.ObjectID, req *StatusUpdateRequest) (*models.Order, *apperrors.Error) {
	if !s.policy.CanAdminUpdate(principal) {
		return nil, apperrors.Forbidden("You do not have permission for this operation", nil)
	}
	if req.Status == "" {
		return nil, apperrors.InvalidInput("Order status not specified", nil)
	}

	order, appErr := s.findOrder(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}

	if appErr := s.transition(order.Status, req.Status); appErr != nil {
		return nil, appErr
	}

	order.Status = req.Status
	if req.TrackingNumber != "" {
		order.TrackingNumber = req.TrackingNumber
	}
	if req.Status == models.StatusDelivered && !order.IsDelivered {
		now := time.Now().UTC()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to update order", err)
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID.Hex()),
		zap.String("status", string(order.Status)),
	)
	s.emit(ctx, events.OrderStatusUpdated, order)
	return order, nil
}

// CancelOrder moves the order to cancelled and returns every line item's
// quantity to stock. Shipped and delivered orders cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, principal models.Principal, orderID primitive.ObjectID) (*models.Order, *apperrors.Error) {
	order, appErr := s.findOrder(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}

	if !s.policy.CanCancel(order, principal) {
		return nil, apperrors.Forbidden("You do not have permission to cancel this order", nil)
	}
	if order.Status == models.StatusShipped || order.Status == models.StatusDelivered {
		return nil, apperrors.CannotCancel("Orders that have been shipped or delivered cannot be cancelled", nil)
	}
	// Repeat cancels must not release stock a second time.
	if order.Status == models.StatusCancelled {
		return order, nil
	}

	order.Status = models.StatusCancelled
	s.releaseItems(ctx, order.OrderItems)

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to cancel order", err)
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", order.UserID.Hex()),
	)
	s.emit(ctx, events.OrderCancelled, order)
	return order, nil
}

// ApplyPaymentUpdate merges a gateway-reported payment outcome into the
// order. The first completed update marks the order paid and advances a
// pending order to processing; repeats only refresh the transaction id and
// timestamp.
func (s *OrderService) ApplyPaymentUpdate(ctx context.Context, orderID primitive.ObjectID, req *PaymentUpdateRequest) (*models.Order, *apperrors.Error) {
	if !req.PaymentStatus.IsValid() {
		return nil, apperrors.InvalidInput("Unknown payment status: "+string(req.PaymentStatus), nil)
	}

	order, appErr := s.findOrder(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}

	order.Payment.Status = req.PaymentStatus
	order.Payment.TransactionID = req.TransactionID
	order.Payment.UpdatedAt = time.Now().UTC()

	if req.PaymentStatus == models.PaymentCompleted && !order.IsPaid {
		now := time.Now().UTC()
		order.IsPaid = true
		order.PaidAt = &now

		if order.Status == models.StatusPending {
			order.Status = models.StatusProcessing
		}
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to update payment", err)
	}

	s.logger.Info("Payment status updated",
		zap.String("order_id", order.ID.Hex()),
		zap.String("payment_status", string(order.Payment.Status)),
		zap.Bool("is_paid", order.IsPaid),
	)
	s.emit(ctx, events.OrderPaymentUpdated, order)
	return order, nil
}

func (s *OrderService) findOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Order, *apperrors.Error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperrors.NotFound("Order not found", err)
		}
		return nil, apperrors.Internal("Failed to fetch order", err)
	}
	return order, nil
}
