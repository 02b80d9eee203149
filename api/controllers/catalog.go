package controllers

import (
	"net/http"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	"github.com/ichaoui56/e-commerce-backoffice/api/validators"
	"github.com/ichaoui56/e-commerce-backoffice/internal/products"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

type colorRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Hex  string `json:"hex" validate:"required"`
}

type sizeRequest struct {
	Label string `json:"label" validate:"required,max=20"`
}

func productServiceMissing() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
}

func ColorList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		colors, err := svc.ListColors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, colors)
	}
}

func ColorCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		var body colorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		color, err := svc.CreateColor(r.Context(), products.ColorInput{Name: body.Name, Hex: body.Hex})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, color)
	}
}

func SizeList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		sizes, err := svc.ListSizes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sizes)
	}
}

func SizeCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceMissing())
			return
		}
		var body sizeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size, err := svc.CreateSize(r.Context(), body.Label)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, size)
	}
}
