package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	"github.com/ichaoui56/e-commerce-backoffice/api/validators"
	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	"github.com/ichaoui56/e-commerce-backoffice/internal/reports"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

const maxLowStockRows = 200

type stockUpdateRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

// InventoryExporter renders the stock workbook served by InventoryExport.
type InventoryExporter interface {
	Filename() string
	WriteInventory(ctx context.Context, w io.Writer, search string) error
}

var _ InventoryExporter = (*reports.Exporter)(nil)

func inventoryServiceMissing() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable")
}

// InventoryUpdate sets the on-hand stock of one size row.
func InventoryUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, inventoryServiceMissing())
			return
		}
		id, err := validators.ParseUUIDParam(r, "sizeStockId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body stockUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.UpdateStock(r.Context(), id, *body.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// InventoryLowStock lists size rows under the threshold; 0 means the configured default.
func InventoryLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, inventoryServiceMissing())
			return
		}
		threshold, err := validators.ParseQueryInt(r, "threshold", 0, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxLowStockRows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListLowStock(r.Context(), threshold, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InventoryExport renders the stock table as an XLSX attachment. The
// workbook is buffered so failures still produce a JSON error.
func InventoryExport(exporter InventoryExporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exporter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report exporter unavailable"))
			return
		}

		var buf bytes.Buffer
		if err := exporter.WriteInventory(r.Context(), &buf, searchTerm(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", reports.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.Filename()))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "inventory export write failed", err)
		}
	}
}
