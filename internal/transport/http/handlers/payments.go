package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/payment"
	"github.com/bluecart/commerce/internal/transport/http/response"
)

type PaymentHandler struct {
	svc *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler { return &PaymentHandler{svc: svc} }

type paymentDTO struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"orderId"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toPaymentDTO(p *payment.Payment) paymentDTO {
	return paymentDTO{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toPaymentDTO(p))
}

func (h *PaymentHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		response.Err(w, r, domain.ErrValidation("orderId query parameter is required"))
		return
	}

	payments, err := h.svc.ListByOrder(r.Context(), orderID)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]paymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	response.Data(w, http.StatusOK, map[string]any{"payments": out})
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Refund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toPaymentDTO(p))
}
