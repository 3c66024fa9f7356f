package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/request"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Capture handles POST /api/v1/orders/:id/payments
func (h *PaymentHandler) Capture(c *gin.Context) {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.CapturePaymentInput{
		Amount:       utils.Cents(req.Amount),
		TipAmount:    utils.Cents(req.TipAmount),
		Method:       req.Method,
		Provider:     req.Provider,
		ProviderTxID: req.ProviderTxID,
		UserID:       GetUserID(c),
		DeviceID:     GetDeviceID(c),
	}
	for _, alloc := range req.Allocations {
		itemID, err := uuid.Parse(alloc.ItemID)
		if err != nil {
			response.BadRequest(c, "Invalid item_id in allocations")
			return
		}
		input.Allocations = append(input.Allocations, service.AllocationInput{
			ItemID:   itemID,
			Quantity: alloc.Quantity,
		})
	}

	payment, err := h.paymentService.CapturePayment(c.Request.Context(), orderID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment captured", payment)
}

// List handles GET /api/v1/orders/:id/payments
func (h *PaymentHandler) List(c *gin.Context) {
	orderID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved", payments)
}
