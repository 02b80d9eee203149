package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	"github.com/ichaoui56/e-commerce-backoffice/api/validators"
	"github.com/ichaoui56/e-commerce-backoffice/internal/orders"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

type createOrderRequest struct {
	CustomerName   string             `json:"customer_name" validate:"required,max=100"`
	Phone          string             `json:"phone" validate:"required,max=30"`
	City           string             `json:"city" validate:"required,max=100"`
	Address        *string            `json:"address,omitempty" validate:"omitempty,max=500"`
	GuestSessionID *string            `json:"guest_session_id,omitempty" validate:"omitempty,max=100"`
	ShippingCost   decimal.Decimal    `json:"shipping_cost"`
	ShippingOption *string            `json:"shipping_option,omitempty" validate:"omitempty,max=50"`
	Items          []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderItemRequest struct {
	SizeStockID uuid.UUID `json:"size_stock_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gte=1"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r createOrderRequest) toInput() orders.CreateOrderInput {
	input := orders.CreateOrderInput{
		CustomerName:   r.CustomerName,
		Phone:          r.Phone,
		City:           r.City,
		Address:        r.Address,
		GuestSessionID: r.GuestSessionID,
		ShippingCost:   r.ShippingCost,
		ShippingOption: r.ShippingOption,
		Items:          make([]orders.ItemInput, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		input.Items = append(input.Items, orders.ItemInput{SizeStockID: item.SizeStockID, Quantity: item.Quantity})
	}
	return input
}

func orderServiceMissing() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable")
}

// OrderList pages through orders, newest first, filtered by status and search.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}

		filter := orders.ListFilter{Search: searchTerm(r)}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			filter.Status = &status
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListOrders(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrderCreate reserves stock for every line and records a pending order.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CreateOrder(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// OrderApprove confirms a pending order and converts its reservation into a stock reduction.
func OrderApprove(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.ApproveOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body orderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateOrderStatus(r.Context(), id, enums.OrderStatus(strings.TrimSpace(strings.ToLower(body.Status))))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderEvents returns the journal of an order, oldest first.
func OrderEvents(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, orderServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.OrderEvents(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
