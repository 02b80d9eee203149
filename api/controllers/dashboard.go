package controllers

import (
	"net/http"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	"github.com/ichaoui56/e-commerce-backoffice/internal/dashboard"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

func dashboardServiceMissing() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable")
}

func DashboardStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, dashboardServiceMissing())
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func DashboardActivity(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, dashboardServiceMissing())
			return
		}
		feed, err := svc.RecentActivity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feed)
	}
}

func DashboardStock(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, dashboardServiceMissing())
			return
		}
		overview, err := svc.StockOverview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
