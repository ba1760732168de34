package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/modavia/order-service/common/errors"
	"github.com/modavia/order-service/middleware"
	"github.com/modavia/order-service/services"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrder handles order creation requests
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, appErr := oc.orderService.CreateOrder(ctx.Request.Context(), principal.ID, &req)
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// GetOrders returns paginated orders: all orders for admins, own orders for users
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, appErr := oc.orderService.GetOrders(ctx.Request.Context(), principal, parseListParams(ctx))
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetMyOrders returns the authenticated user's own orders
func (oc *OrderController) GetMyOrders(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, appErr := oc.orderService.GetMyOrders(ctx.Request.Context(), principal, parseListParams(ctx))
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order after an access check
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	order, appErr := oc.orderService.GetOrderByID(ctx.Request.Context(), principal, orderID)
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus applies an admin status change, optionally with a
// tracking number
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req services.StatusUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Order status not specified"})
		return
	}

	order, appErr := oc.orderService.UpdateOrderStatus(ctx.Request.Context(), principal, orderID, &req)
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// CancelOrder cancels an order and restores its stock
func (oc *OrderController) CancelOrder(ctx *gin.Context) {
	principal, err := middleware.GetPrincipal(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	order, appErr := oc.orderService.CancelOrder(ctx.Request.Context(), principal, orderID)
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// UpdatePaymentStatus applies a payment update from an authenticated client.
// Gateway webhooks converge on the same service operation.
func (oc *OrderController) UpdatePaymentStatus(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req services.PaymentUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Payment status not specified"})
		return
	}

	order, appErr := oc.orderService.ApplyPaymentUpdate(ctx.Request.Context(), orderID, &req)
	if appErr != nil {
		respondAppError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order": order})
}

// parseOrderID reads and validates the :id path param, responding 400 itself
// on failure.
func parseOrderID(ctx *gin.Context) (primitive.ObjectID, bool) {
	orderID, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return primitive.NilObjectID, false
	}
	return orderID, true
}

// respondAppError hands the error to apperrors.ErrorMiddleware for rendering.
func respondAppError(ctx *gin.Context, appErr *apperrors.Error) {
	_ = ctx.Error(appErr)
	ctx.Abort()
}

// parseListParams extracts pagination, filter and sort parameters
func parseListParams(ctx *gin.Context) services.ListOrdersRequest {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	sortBy := ctx.DefaultQuery("sortBy", "createdAt")
	switch sortBy {
	case "createdAt", "totalPrice", "status", "updatedAt":
	default:
		sortBy = "createdAt"
	}

	return services.ListOrdersRequest{
		Page:   pageInt,
		Limit:  limitInt,
		Status: ctx.Query("status"),
		SortBy: sortBy,
		Order:  ctx.DefaultQuery("order", "desc"),
	}
}
