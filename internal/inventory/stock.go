// Package inventory holds the stock primitives shared by catalog edits and the
// order lifecycle. The primitives run inside the caller's transaction and lock
// size rows in id order so concurrent orders cannot deadlock.
package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
)

// Line is a quantity of one size stock row.
type Line struct {
	SizeStockID uuid.UUID
	Quantity    int
}

// Shortage describes why a reservation could not be satisfied.
type Shortage struct {
	SizeStockID uuid.UUID `json:"size_stock_id"`
	Product     string    `json:"product"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
}

// Aggregate merges lines that target the same row and sorts them by id.
func Aggregate(lines []Line) ([]Line, error) {
	totals := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.SizeStockID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_stock_id is required")
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"size_stock_id": line.SizeStockID})
		}
		totals[line.SizeStockID] += line.Quantity
	}
	out := make([]Line, 0, len(totals))
	for id, qty := range totals {
		out = append(out, Line{SizeStockID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SizeStockID.String() < out[j].SizeStockID.String()
	})
	return out, nil
}

// LockSizeStocks loads the rows FOR UPDATE in id order together with their
// size, colour and product. A missing id is a NOT_FOUND error.
func LockSizeStocks(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.SizeStock, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock lock")
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var rows []models.SizeStock
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Size").
		Preload("ProductColor.Color").
		Preload("ProductColor.Product").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock size stocks")
	}

	locked := make(map[uuid.UUID]models.SizeStock, len(rows))
	for _, row := range rows {
		locked[row.ID] = row
	}
	for id := range unique {
		if _, ok := locked[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "size stock not found").
				WithDetails(map[string]any{"size_stock_id": id})
		}
	}
	return locked, nil
}

// Reserve moves quantities from available to reserved. It returns the locked
// rows so callers can snapshot prices from the same read.
func Reserve(ctx context.Context, tx *gorm.DB, lines []Line) (map[uuid.UUID]models.SizeStock, error) {
	merged, err := Aggregate(lines)
	if err != nil {
		return nil, err
	}
	locked, err := LockSizeStocks(ctx, tx, lineIDs(merged))
	if err != nil {
		return nil, err
	}

	for _, line := range merged {
		row := locked[line.SizeStockID]
		if row.Available() < line.Quantity {
			return nil, insufficient(row, line.Quantity)
		}
	}

	for _, line := range merged {
		res := tx.WithContext(ctx).Exec(`
			UPDATE size_stocks
			SET reserved_stock = reserved_stock + ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND stock - reserved_stock >= ?
		`, line.Quantity, line.SizeStockID, line.Quantity)
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
		}
		if res.RowsAffected == 0 {
			return nil, insufficient(locked[line.SizeStockID], line.Quantity)
		}
		row := locked[line.SizeStockID]
		row.ReservedStock += line.Quantity
		locked[line.SizeStockID] = row
	}
	return locked, nil
}

// Commit converts a reservation into a stock reduction.
func Commit(ctx context.Context, tx *gorm.DB, lines []Line) error {
	return apply(ctx, tx, lines, "commit reserved stock", `
		UPDATE size_stocks
		SET stock = stock - ?,
			reserved_stock = reserved_stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND reserved_stock >= ? AND stock >= ?
	`, func(l Line) []any {
		return []any{l.Quantity, l.Quantity, l.SizeStockID, l.Quantity, l.Quantity}
	})
}

// Release returns reserved quantities to the available pool.
func Release(ctx context.Context, tx *gorm.DB, lines []Line) error {
	return apply(ctx, tx, lines, "release reserved stock", `
		UPDATE size_stocks
		SET reserved_stock = reserved_stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND reserved_stock >= ?
	`, func(l Line) []any {
		return []any{l.Quantity, l.SizeStockID, l.Quantity}
	})
}

// Restock undoes a commit by adding quantities back to stock.
func Restock(ctx context.Context, tx *gorm.DB, lines []Line) error {
	return apply(ctx, tx, lines, "restock", `
		UPDATE size_stocks
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, func(l Line) []any {
		return []any{l.Quantity, l.SizeStockID}
	})
}

func apply(ctx context.Context, tx *gorm.DB, lines []Line, action, query string, args func(Line) []any) error {
	merged, err := Aggregate(lines)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}
	locked, err := LockSizeStocks(ctx, tx, lineIDs(merged))
	if err != nil {
		return err
	}
	for _, line := range merged {
		res := tx.WithContext(ctx).Exec(query, args(line)...)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, action)
		}
		if res.RowsAffected == 0 {
			row := locked[line.SizeStockID]
			return pkgerrors.New(pkgerrors.CodeInvariant, action+" would leave stock inconsistent").
				WithDetails(map[string]any{
					"size_stock_id":  line.SizeStockID,
					"quantity":       line.Quantity,
					"stock":          row.Stock,
					"reserved_stock": row.ReservedStock,
				})
		}
	}
	return nil
}

func lineIDs(lines []Line) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.SizeStockID)
	}
	return ids
}

func describe(row models.SizeStock) (product, color string) {
	if row.ProductColor == nil {
		return "", ""
	}
	if row.ProductColor.Product != nil {
		product = row.ProductColor.Product.Name
	}
	return product, row.ProductColor.Color.Name
}

func insufficient(row models.SizeStock, requested int) error {
	product, color := describe(row)
	return pkgerrors.New(pkgerrors.CodeInsufficient, "insufficient stock for "+product).
		WithDetails(Shortage{
			SizeStockID: row.ID,
			Product:     product,
			Color:       color,
			Size:        row.Size.Label,
			Requested:   requested,
			Available:   row.Available(),
		})
}
