package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasirlab/kasir-pos/internal/adapter/snap"
	domain "github.com/kasirlab/kasir-pos/internal/entity"
	"github.com/kasirlab/kasir-pos/internal/logging"
)

// PaymentHandler receives the gateway's outcome notifications and
// resolves the awaiting payment session.
type PaymentHandler struct {
	sessions *snap.Adapter
}

func NewPaymentHandler(sessions *snap.Adapter) *PaymentHandler {
	return &PaymentHandler{sessions: sessions}
}

type notifyReq struct {
	Token             string `json:"token" binding:"required"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	StatusMessage     string `json:"status_message"`
}

func (h *PaymentHandler) Notify(c *gin.Context) {
	var req notifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad_request"})
		return
	}

	res := domain.PaymentResult{
		Kind:              snap.OutcomeFromStatus(req.TransactionStatus),
		OrderID:           req.OrderID,
		TransactionStatus: req.TransactionStatus,
		Message:           req.StatusMessage,
	}

	if !h.sessions.Resolve(req.Token, res) {
		logging.From(c).Warn("notify for unknown session", "order_id", req.OrderID)
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
