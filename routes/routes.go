package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/modavia/order-service/controllers"
	"github.com/modavia/order-service/middleware"
)

// RegisterRoutes wires the order and payment endpoints onto the engine.
func RegisterRoutes(r *gin.Engine, jwtSecret string, oc *controllers.OrderController, pc *controllers.PaymentController) {
	auth := middleware.AuthMiddleware(jwtSecret)

	orderRoutes := r.Group("/orders")
	orderRoutes.Use(auth)
	orderRoutes.POST("/", oc.CreateOrder)
	orderRoutes.GET("/", oc.GetOrders)
	orderRoutes.GET("/my", oc.GetMyOrders)
	orderRoutes.GET("/:id", oc.GetOrderByID)
	orderRoutes.PUT("/:id/cancel", oc.CancelOrder)
	orderRoutes.PUT("/:id/payment", oc.UpdatePaymentStatus)
	orderRoutes.PUT("/:id/status", middleware.AdminOnly(), oc.UpdateOrderStatus)

	paymentRoutes := r.Group("/payments")
	paymentRoutes.GET("/methods", pc.GetPaymentMethods)
	paymentRoutes.POST("/create-payment-intent", auth, pc.CreatePaymentIntent)
	// No auth: Stripe calls this directly; verification is the signature check.
	paymentRoutes.POST("/webhook", pc.StripeWebhook)
}
