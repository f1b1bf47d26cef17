// Package backend is the REST client for the service that owns plates,
// transactions and payment tokens.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/kasirlab/kasir-pos/internal/entity"
	"github.com/kasirlab/kasir-pos/internal/usecase"
)

// APIError is a non-2xx backend response. Message carries the server's
// human-readable message verbatim when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: timeout},
	}
}

type plateDTO struct {
	ID       int64  `json:"id"`
	RFIDUID  string `json:"rfid_uid"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	IsActive bool   `json:"is_active"`
}

type transactionDTO struct {
	ID          json.Number `json:"id"`
	OrderID     string      `json:"order_id"`
	TotalAmount int64       `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	Status      string      `json:"status"`
}

// ByRFID resolves a plate: GET {base}/plates/rfid/{uid}.
func (c *Client) ByRFID(ctx context.Context, uid string) (domain.Plate, error) {
	var out struct {
		Data plateDTO `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/plates/rfid/"+url.PathEscape(uid), nil, &out)
	if err != nil {
		return domain.Plate{}, err
	}
	return domain.Plate{
		ID:      out.Data.ID,
		RFIDUID: out.Data.RFIDUID,
		Name:    out.Data.Name,
		Price:   out.Data.Price,
		Active:  out.Data.IsActive,
	}, nil
}

// Create persists a transaction for the cart snapshot: POST {base}/transactions.
func (c *Client) Create(ctx context.Context, items []domain.TransactionItem) (domain.Transaction, error) {
	type itemDTO struct {
		PlateID  int64 `json:"plate_id"`
		Quantity int   `json:"quantity"`
		Price    int64 `json:"price"`
	}
	body := struct {
		Items []itemDTO `json:"items"`
	}{Items: make([]itemDTO, 0, len(items))}
	for _, it := range items {
		body.Items = append(body.Items, itemDTO{PlateID: it.PlateID, Quantity: it.Quantity, Price: it.Price})
	}

	var out struct {
		Data transactionDTO `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &out); err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.Transaction{
		ID:          out.Data.ID.String(),
		OrderID:     out.Data.OrderID,
		Items:       items,
		TotalAmount: out.Data.TotalAmount,
		CreatedAt:   out.Data.CreatedAt,
		Status:      domain.TransactionStatus(out.Data.Status),
	}
	if tx.Status == "" {
		tx.Status = domain.TxPending
	}
	return tx, nil
}

// SnapToken requests a payment session token: POST {base}/payment/snap/{id}.
func (c *Client) SnapToken(ctx context.Context, transactionID string) (string, error) {
	var out struct {
		SnapToken string `json:"snap_token"`
	}
	err := c.do(ctx, http.MethodPost, "/payment/snap/"+url.PathEscape(transactionID), nil, &out)
	if err != nil {
		return "", err
	}
	if out.SnapToken == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "empty snap token from backend"}
	}
	return out.SnapToken, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError prefers the server's message field, falling back to a
// generic message for non-JSON bodies.
func apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: payload.Message}
	}
	return &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("backend request failed with status %d", resp.StatusCode),
	}
}

var (
	_ usecase.PlateLookup     = (*Client)(nil)
	_ usecase.TransactionAPI  = (*Client)(nil)
	_ usecase.PaymentTokenAPI = (*Client)(nil)
)
