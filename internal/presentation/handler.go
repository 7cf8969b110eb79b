package presentation

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vkarpenko/order-lifecycle-service/internal/application"
	"github.com/vkarpenko/order-lifecycle-service/internal/domain"
	"github.com/vkarpenko/order-lifecycle-service/internal/presentation/helpers"
)

type OrdersHandler struct {
	svc *application.OrderService
}

func NewOrdersHandler(svc *application.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{id}", h.GetOrder)
	r.Post("/orders/{id}/cancel", h.CancelOrder)
	r.Post("/orders/{id}/discount", h.ApplyDiscount)
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []domain.OrderItem `json:"items"`
}

type discountRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), req.CustomerID, req.Items)
	if err != nil {
		helpers.HttpError(w, helpers.Status(err), err.Error())
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		helpers.HttpError(w, http.StatusBadRequest, "id is empty")
		return
	}

	order, err := h.svc.FindOrder(r.Context(), id)
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if order == nil {
		helpers.HttpError(w, http.StatusNotFound, "order not found")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.CancelOrder(r.Context(), id); err != nil {
		helpers.HttpError(w, helpers.Status(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req discountRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	order, err := h.svc.ApplyDiscount(r.Context(), id, req.Percentage)
	if err != nil {
		helpers.HttpError(w, helpers.Status(err), err.Error())
		return
	}

	helpers.WriteJSON(w, http.StatusOK, order)
}
