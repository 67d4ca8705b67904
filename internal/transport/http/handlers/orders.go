package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/order"
	"github.com/bluecart/commerce/internal/transport/http/middleware"
	"github.com/bluecart/commerce/internal/transport/http/response"
)

type OrderHandler struct {
	svc *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler { return &OrderHandler{svc: svc} }

type orderItemDTO struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderDTO struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	TotalAmount float64        `json:"totalAmount"`
	Status      string         `json:"status"`
	Items       []orderItemDTO `json:"items"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toOrderDTO(o *order.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return orderDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

type createOrderReq struct {
	Items       []orderItemDTO `json:"items"`
	TotalAmount float64        `json:"totalAmount"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, r, domain.ErrValidation("invalid json body"))
		return
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.Item{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}

	o, err := h.svc.Create(r.Context(), order.CreateCmd{
		UserID:      middleware.UserID(r),
		Items:       items,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toOrderDTO(o))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toOrderDTO(o))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, total, err := h.svc.ListByUser(r.Context(), middleware.UserID(r), limit, offset)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	response.Data(w, http.StatusOK, map[string]any{"orders": out, "total": total})
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toOrderDTO(o))
}
