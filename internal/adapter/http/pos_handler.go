package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasirlab/kasir-pos/internal/adapter/backend"
	"github.com/kasirlab/kasir-pos/internal/adapter/observ"
	"github.com/kasirlab/kasir-pos/internal/cart"
	"github.com/kasirlab/kasir-pos/internal/logging"
	"github.com/kasirlab/kasir-pos/internal/usecase"
)

type POSHandler struct {
	scanner  *usecase.Scanner
	cart     *cart.Cart
	checkout *usecase.Checkout
}

func NewPOSHandler(scanner *usecase.Scanner, c *cart.Cart, checkout *usecase.Checkout) *POSHandler {
	return &POSHandler{scanner: scanner, cart: c, checkout: checkout}
}

type scanReq struct {
	RFIDUID string `json:"rfid_uid"`
}

type lineResp struct {
	RFIDUID  string `json:"rfid_uid"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
}

type cartResp struct {
	Lines     []lineResp `json:"lines"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"item_count"`
}

func (h *POSHandler) currentCart() cartResp {
	lines := h.cart.Lines()
	out := cartResp{Lines: make([]lineResp, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, lineResp{
			RFIDUID:  l.Plate.RFIDUID,
			Name:     l.Plate.Name,
			Price:    l.Plate.Price,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		})
		out.Total += l.Subtotal()
		out.ItemCount += l.Quantity
	}
	return out
}

// Scan resolves an RFID UID and merges the plate into the cart.
func (h *POSHandler) Scan(c *gin.Context) {
	var req scanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad_request"})
		return
	}

	plate, err := h.scanner.Scan(c.Request.Context(), req.RFIDUID)
	if err != nil {
		observ.ScanResult("error")
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, usecase.ErrEmptyRFID):
			status = http.StatusBadRequest
		case errors.Is(err, usecase.ErrScanInFlight):
			status = http.StatusConflict
		case errors.Is(err, usecase.ErrPlateInactive):
			status = http.StatusUnprocessableEntity
		default:
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
				status = http.StatusNotFound
			}
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	observ.ScanResult("added")
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"rfid_uid": plate.RFIDUID,
			"name":     plate.Name,
			"price":    plate.Price,
		},
		"cart": h.currentCart(),
	})
}

func (h *POSHandler) GetCart(c *gin.Context) {
	resp := h.currentCart()
	if plate, ok := h.scanner.LastScanned(); ok {
		c.JSON(http.StatusOK, gin.H{"cart": resp, "last_scanned": gin.H{"name": plate.Name, "price": plate.Price}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": resp})
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *POSHandler) UpdateLine(c *gin.Context) {
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad_request"})
		return
	}
	h.cart.SetQuantity(c.Param("uid"), req.Quantity)
	c.JSON(http.StatusOK, gin.H{"cart": h.currentCart()})
}

func (h *POSHandler) RemoveLine(c *gin.Context) {
	h.cart.Remove(c.Param("uid"))
	c.JSON(http.StatusOK, gin.H{"cart": h.currentCart()})
}

func (h *POSHandler) ClearCart(c *gin.Context) {
	h.cart.Clear()
	c.JSON(http.StatusOK, gin.H{"cart": h.currentCart()})
}

// Checkout runs the full payment round trip and blocks until the
// session resolves.
func (h *POSHandler) Checkout(c *gin.Context) {
	in := usecase.CheckoutInput{
		CashierID:      c.GetString("client_id"),
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	}

	res, err := h.checkout.Execute(c.Request.Context(), in)
	if err != nil {
		status := http.StatusBadGateway
		var dup *usecase.DuplicateCheckoutError
		switch {
		case errors.Is(err, usecase.ErrEmptyCart):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, usecase.ErrCheckoutInProgress):
			status = http.StatusConflict
		case errors.As(err, &dup):
			status = http.StatusConflict
		}
		observ.CheckoutOutcome("failed")
		logging.From(c).Error("checkout failed", "error", err)
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	if res.Cancelled {
		observ.CheckoutOutcome("cancelled")
		c.JSON(http.StatusOK, gin.H{
			"cancelled": true,
			"cart":      h.currentCart(),
		})
		return
	}

	if res.Pending {
		observ.CheckoutOutcome("pending")
	} else {
		observ.CheckoutOutcome("settled")
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"transaction_id": res.Transaction.ID,
			"order_id":       res.Transaction.OrderID,
			"total_amount":   res.Transaction.TotalAmount,
			"status":         res.Transaction.Status,
			"pending":        res.Pending,
		},
		"cart": h.currentCart(),
	})
}
