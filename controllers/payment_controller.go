package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/modavia/order-service/common/logger"
	"github.com/modavia/order-service/models"
	"github.com/modavia/order-service/services"
)

type PaymentController struct {
	Stripe       *services.StripeService
	OrderService *services.OrderService
}

func NewPaymentController(stripeSvc *services.StripeService, orderService *services.OrderService) *PaymentController {
	return &PaymentController{
		Stripe:       stripeSvc,
		OrderService: orderService,
	}
}

// CreatePaymentIntent creates a Stripe payment intent for an order amount
// and returns the client secret for the frontend to confirm the payment.
func (pc *PaymentController) CreatePaymentIntent(c *gin.Context) {
	if !pc.Stripe.IsConfigured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe payment service is not configured"})
		return
	}

	var req struct {
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		OrderID  string  `json:"orderId"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is required"})
		return
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}

	pi, err := pc.Stripe.CreatePaymentIntent(req.Amount, currency, req.OrderID)
	if err != nil {
		logger.Error(c, "Failed to create payment intent", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating payment intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": pi.ClientSecret})
}

// StripeWebhook receives Stripe events and reconciles payment outcomes into
// orders. Signature verification happens in ParseWebhook when a webhook
// secret is configured.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	event, err := pc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		logger.Warn(c, "Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	logger.Info(c, "Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "payment_intent.succeeded":
		pc.handlePaymentIntent(c, event, models.PaymentCompleted)
	case "payment_intent.payment_failed":
		pc.handlePaymentIntent(c, event, models.PaymentFailed)
	default:
		logger.Info(c, "Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (pc *PaymentController) handlePaymentIntent(c *gin.Context, event stripe.Event, status models.PaymentStatus) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		logger.Error(c, "Failed to unmarshal payment intent", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	orderIDHex := pi.Metadata["order_id"]
	if orderIDHex == "" {
		logger.Warn(c, "Payment intent without order_id metadata", zap.String("payment_intent_id", pi.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	orderID, err := primitive.ObjectIDFromHex(orderIDHex)
	if err != nil {
		logger.Warn(c, "Invalid order_id in payment intent metadata",
			zap.String("order_id", orderIDHex),
			zap.String("payment_intent_id", pi.ID),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	_, appErr := pc.OrderService.ApplyPaymentUpdate(c.Request.Context(), orderID, &services.PaymentUpdateRequest{
		PaymentStatus: status,
		TransactionID: pi.ID,
	})
	if appErr != nil {
		logger.Error(c, "Failed to apply payment update from webhook", appErr,
			zap.String("order_id", orderIDHex),
			zap.String("payment_intent_id", pi.ID),
		)
		respondAppError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetPaymentMethods lists the payment methods the storefront offers.
func (pc *PaymentController) GetPaymentMethods(c *gin.Context) {
	paymentMethods := []gin.H{
		{
			"id":          string(models.PaymentStripe),
			"name":        "Credit/Bank Card",
			"description": "Stripe infrastructure is used for secure payment",
		},
		{
			"id":          string(models.PaymentCashOnDelivery),
			"name":        "Cash on Delivery",
			"description": "You can pay when you receive your order",
			"extraFee":    10,
		},
	}

	c.JSON(http.StatusOK, paymentMethods)
}
