// Package dashboard aggregates store-wide counters and the activity feed
// shown on the back-office landing page.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

const (
	recentOrderCount   = 5
	recentProductCount = 3
	scarceStockCount   = 2
	scarceStockBelow   = 5
	activityFeedSize   = 6

	defaultLowStockThreshold = 10
)

type stockOverviewer interface {
	Overview(ctx context.Context) (*inventory.Overview, error)
}

// Service serves the dashboard read models.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	RecentActivity(ctx context.Context) ([]Activity, error)
	StockOverview(ctx context.Context) (*inventory.Overview, error)
}

type ServiceParams struct {
	Repo              *Repository
	Inventory         stockOverviewer
	Logger            *logger.Logger
	LowStockThreshold int
	Currency          string
	Now               func() time.Time
}

type service struct {
	repo      *Repository
	inventory stockOverviewer
	logg      *logger.Logger
	threshold int
	currency  string
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	svc := &service{
		repo:      params.Repo,
		inventory: params.Inventory,
		logg:      params.Logger,
		threshold: params.LowStockThreshold,
		currency:  params.Currency,
		now:       params.Now,
	}
	if svc.threshold <= 0 {
		svc.threshold = defaultLowStockThreshold
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Stats runs the independent counters concurrently; the first failure cancels the rest.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Currency: s.currency}
	pending := enums.OrderStatusPending

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.repo.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.repo.CountOrders(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCustomers, err = s.repo.CountCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Revenue, err = s.repo.Revenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockItems, err = s.repo.CountStockBelow(gctx, s.threshold)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingOrders, err = s.repo.CountOrders(gctx, &pending)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logError(ctx, "dashboard.stats_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dashboard stats")
	}
	return stats, nil
}

// RecentActivity merges new orders, product edits and low stock alerts,
// newest first.
func (s *service) RecentActivity(ctx context.Context) ([]Activity, error) {
	var (
		orders   []recentOrder
		products []recentProduct
		scarce   []scarceStock
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.repo.RecentOrders(gctx, recentOrderCount)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.repo.RecentProducts(gctx, recentProductCount)
		return err
	})
	g.Go(func() (err error) {
		scarce, err = s.repo.ScarceStock(gctx, scarceStockBelow, scarceStockCount)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logError(ctx, "dashboard.activity_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent activity")
	}

	now := s.now().UTC()
	feed := make([]Activity, 0, len(orders)+len(products)+len(scarce))
	for _, o := range orders {
		feed = append(feed, Activity{
			ID:          o.ID,
			Type:        ActivityOrder,
			Title:       "New order received",
			Description: fmt.Sprintf("Order #%s from %s", o.RefID, o.CustomerName),
			Timestamp:   o.CreatedAt,
		})
	}
	for _, p := range products {
		feed = append(feed, Activity{
			ID:          p.ID,
			Type:        ActivityProduct,
			Title:       "Product updated",
			Description: p.Name,
			Timestamp:   p.UpdatedAt,
		})
	}
	for _, row := range scarce {
		feed = append(feed, Activity{
			ID:          row.SizeStockID,
			Type:        ActivityLowStock,
			Title:       "Low stock alert",
			Description: fmt.Sprintf("%s - Size %s running low (%d left)", row.ProductName, row.SizeLabel, row.Stock),
			Timestamp:   now,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > activityFeedSize {
		feed = feed[:activityFeedSize]
	}
	return feed, nil
}

func (s *service) StockOverview(ctx context.Context) (*inventory.Overview, error) {
	return s.inventory.Overview(ctx)
}

func (s *service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}
