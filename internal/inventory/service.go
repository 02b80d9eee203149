package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/outbox"
)

const defaultLowStockLimit = 50

// Service exposes stock adjustments and stock reporting.
type Service interface {
	UpdateStock(ctx context.Context, sizeStockID uuid.UUID, stock int) (*StockRow, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]StockRow, error)
	ListStock(ctx context.Context, search string) ([]StockRow, error)
	Overview(ctx context.Context) (*Overview, error)
}

// Overview buckets size rows by stock level.
type Overview struct {
	InStock    int64 `json:"in_stock"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
	Threshold  int   `json:"threshold"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ServiceParams struct {
	Repo              *Repository
	Tx                txRunner
	Outbox            outboxPublisher
	Logger            *logger.Logger
	LowStockThreshold int
}

type service struct {
	repo      *Repository
	tx        txRunner
	outbox    outboxPublisher
	logg      *logger.Logger
	threshold int
}

type stockAdjustedEvent struct {
	SizeStockID   uuid.UUID `json:"size_stock_id"`
	PreviousStock int       `json:"previous_stock"`
	Stock         int       `json:"stock"`
	ReservedStock int       `json:"reserved_stock"`
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	threshold := params.LowStockThreshold
	if threshold <= 0 {
		threshold = 10
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		logg:      params.Logger,
		threshold: threshold,
	}, nil
}

// UpdateStock sets the on-hand quantity of a size row. The new value may not
// drop below what pending orders have reserved.
func (s *service) UpdateStock(ctx context.Context, sizeStockID uuid.UUID, stock int) (*StockRow, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	var productID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := LockSizeStocks(ctx, tx, []uuid.UUID{sizeStockID})
		if err != nil {
			return err
		}
		row := locked[sizeStockID]
		if stock < row.ReservedStock {
			return pkgerrors.New(pkgerrors.CodeInvariant, "stock cannot be lower than reserved quantity").
				WithDetails(map[string]any{
					"size_stock_id":  sizeStockID,
					"stock":          stock,
					"reserved_stock": row.ReservedStock,
				})
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE size_stocks SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			stock, sizeStockID,
		).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
		}
		if row.ProductColor != nil {
			productID = row.ProductColor.ProductID
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   productID,
			Data: stockAdjustedEvent{
				SizeStockID:   sizeStockID,
				PreviousStock: row.Stock,
				Stock:         stock,
				ReservedStock: row.ReservedStock,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"size_stock_id": sizeStockID.String(),
			"product_id":    productID.String(),
			"stock":         stock,
		})
		s.logg.Info(logCtx, "stock.adjusted")
	}

	record, err := s.repo.FindRow(ctx, sizeStockID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock row")
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "size stock not found")
	}
	row := record.toRow(s.threshold)
	return &row, nil
}

// ListLowStock defaults to the configured threshold when threshold is not positive.
func (s *service) ListLowStock(ctx context.Context, threshold, limit int) ([]StockRow, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	if limit <= 0 {
		limit = defaultLowStockLimit
	}
	records, err := s.repo.ListBelow(ctx, threshold, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return s.toRows(records), nil
}

func (s *service) ListStock(ctx context.Context, search string) ([]StockRow, error) {
	records, err := s.repo.ListAll(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}
	return s.toRows(records), nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	out, low, in, err := s.repo.Counts(ctx, s.threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock levels")
	}
	return &Overview{InStock: in, LowStock: low, OutOfStock: out, Threshold: s.threshold}, nil
}

func (s *service) toRows(records []stockRecord) []StockRow {
	out := make([]StockRow, 0, len(records))
	for _, record := range records {
		out = append(out, record.toRow(s.threshold))
	}
	return out
}
