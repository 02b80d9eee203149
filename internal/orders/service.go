package orders

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	"github.com/ichaoui56/e-commerce-backoffice/internal/products"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/metrics"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/outbox"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

const (
	refIDAttempts       = 3
	maxCustomerNameLen  = 100
	maxCityLength       = 100
	defaultCurrency     = "MAD"
	stockActionCommit   = "commit"
	stockActionRelease  = "release"
	stockActionRestock  = "restock"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 .\-]{6,18}[0-9]$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type timelineReader interface {
	Timeline(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]outbox.Entry, error)
}

// Service runs the order lifecycle: reservation on create, commit on
// approval, release or restock on cancellation and deletion.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	ApproveOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[OrderDTO], error)
	OrderEvents(ctx context.Context, id uuid.UUID) ([]outbox.Entry, error)
}

type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Journal  timelineReader
	Stock    StockKeeper
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
	Currency string
	// Now and RefIDs default to time.Now and NewRefID.
	Now    func() time.Time
	RefIDs func() (string, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	journal  timelineReader
	stock    StockKeeper
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	currency string
	now      func() time.Time
	refIDs   func() (string, error)
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Journal == nil {
		return nil, fmt.Errorf("journal reader required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	svc := &service{
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		journal:  params.Journal,
		stock:    params.Stock,
		metrics:  params.Metrics,
		logg:     params.Logger,
		currency: params.Currency,
		now:      params.Now,
		refIDs:   params.RefIDs,
	}
	if svc.currency == "" {
		svc.currency = defaultCurrency
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.refIDs == nil {
		svc.refIDs = NewRefID
	}
	return svc, nil
}

// CreateOrder reserves stock and records a pending order in one transaction.
// A ref id collision retries the whole transaction with a fresh id.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	items, err := normalizeCreateInput(&input)
	if err != nil {
		s.metrics.IncRejected("validation")
		return nil, err
	}

	var orderID uuid.UUID
	for attempt := 1; attempt <= refIDAttempts; attempt++ {
		refID, err := s.refIDs()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order reference")
		}
		orderID, err = s.createOnce(ctx, refID, input, items)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "") && attempt < refIDAttempts {
			continue
		}
		s.recordCreateFailure(ctx, err)
		if pkgerrors.As(err) != nil && !db.IsUniqueViolation(err, "") {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.IncCreated()
	s.logInfo(ctx, orderID, "order.created")
	return s.GetOrder(ctx, orderID)
}

func (s *service) createOnce(ctx context.Context, refID string, input CreateOrderInput, items []ItemInput) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lines := make([]inventory.Line, 0, len(items))
		for _, item := range items {
			lines = append(lines, inventory.Line{SizeStockID: item.SizeStockID, Quantity: item.Quantity})
		}
		locked, err := s.stock.Reserve(ctx, tx, lines)
		if err != nil {
			return err
		}

		order := &models.Order{
			RefID:          refID,
			CustomerName:   input.CustomerName,
			Phone:          input.Phone,
			City:           input.City,
			Address:        input.Address,
			GuestSessionID: input.GuestSessionID,
			ShippingCost:   input.ShippingCost,
			ShippingOption: input.ShippingOption,
			Status:         enums.OrderStatusPending,
			StockReserved:  true,
			StockReduced:   false,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		rows := make([]models.OrderItem, 0, len(items))
		subtotal := decimal.Zero
		for _, item := range items {
			price := unitPrice(locked[item.SizeStockID])
			rows = append(rows, models.OrderItem{
				OrderID:         order.ID,
				SizeStockID:     item.SizeStockID,
				Quantity:        item.Quantity,
				PriceAtPurchase: price,
			})
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if err := repo.CreateItems(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order items")
		}

		orderID = order.ID
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data:          OrderCreatedEvent{RefID: refID, ItemCount: len(rows), Subtotal: subtotal},
		})
	})
	return orderID, err
}

func (s *service) recordCreateFailure(ctx context.Context, err error) {
	if pkgerrors.IsCode(err, pkgerrors.CodeInsufficient) {
		s.metrics.IncRejected("insufficient_stock")
		if s.logg != nil {
			logCtx := s.logg.WithField(ctx, "reason", err.Error())
			s.logg.Warn(logCtx, "stock.reservation_rejected")
		}
		return
	}
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejected(strings.ToLower(string(typed.Code())))
		return
	}
	s.metrics.IncRejected("dependency")
	if s.logg != nil {
		s.logg.Error(ctx, "order.create_failed", err)
	}
}

// ApproveOrder confirms a pending order and turns its reservation into a stock reduction.
func (s *service) ApproveOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be approved").
				WithDetails(map[string]any{"status": order.Status})
		}
		if !order.StockReserved {
			return pkgerrors.New(pkgerrors.CodeInvariant, "order has no stock reservation to commit")
		}
		if err := s.stock.Commit(ctx, tx, orderLines(order)); err != nil {
			return err
		}

		now := s.now().UTC()
		if err := repo.UpdateOrder(ctx, id, map[string]any{
			"status":         enums.OrderStatusConfirmed,
			"stock_reserved": false,
			"stock_reduced":  true,
			"confirmed_at":   now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: approve order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderApproved,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Data: OrderStatusEvent{
				RefID:       order.RefID,
				From:        order.Status,
				To:          enums.OrderStatusConfirmed,
				StockAction: stockActionCommit,
			},
		})
	})
	if err != nil {
		return nil, s.mutationError(err, "approve order")
	}

	s.metrics.IncTransition(string(enums.OrderStatusConfirmed))
	s.logInfo(ctx, id, "order.approved")
	return s.GetOrder(ctx, id)
}

// UpdateOrderStatus applies a plain status transition. Cancelling gives back
// whatever stock the order still holds.
func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	changed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if order.Status == status {
			return nil
		}
		if !order.Status.CanTransitionTo(status) {
			msg := fmt.Sprintf("cannot move order from %s to %s", order.Status, status)
			if order.Status == enums.OrderStatusPending && status == enums.OrderStatusConfirmed {
				msg = "pending orders are confirmed through approval"
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, msg).
				WithDetails(map[string]any{"from": order.Status, "to": status})
		}

		updates := map[string]any{"status": status}
		action := ""
		if status == enums.OrderStatusCancelled {
			action, err = s.giveBackStock(ctx, tx, order)
			if err != nil {
				return err
			}
			updates["stock_reserved"] = false
			updates["stock_reduced"] = false
		}
		if err := repo.UpdateOrder(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		changed = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Data: OrderStatusEvent{
				RefID:       order.RefID,
				From:        order.Status,
				To:          status,
				StockAction: action,
			},
		})
	})
	if err != nil {
		return nil, s.mutationError(err, "update order status")
	}

	if changed {
		s.metrics.IncTransition(string(status))
		if s.logg != nil {
			logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, id.String()), map[string]any{"status": status})
			s.logg.Info(logCtx, "order.status_changed")
		}
	}
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes an order and its items after returning held stock.
func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.lockOrder(ctx, repo, id)
		if err != nil {
			return err
		}

		action := ""
		switch {
		case order.StockReserved:
			if err := s.stock.Release(ctx, tx, orderLines(order)); err != nil {
				return err
			}
			action = stockActionRelease
		case order.StockReduced && order.Status == enums.OrderStatusConfirmed:
			if err := s.stock.Restock(ctx, tx, orderLines(order)); err != nil {
				return err
			}
			action = stockActionRestock
		}

		if err := repo.DeleteOrder(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Data:          OrderDeletedEvent{RefID: order.RefID, Status: order.Status, StockAction: action},
		})
	})
	if err != nil {
		return s.mutationError(err, "delete order")
	}
	s.logInfo(ctx, id, "order.deleted")
	return nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrderDetail(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := buildOrderDTO(*order, s.currency)
	return &dto, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if _, err := params.Decode(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListOrders(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, buildOrderDTO(row, s.currency))
	}
	page := pagination.Paginate(dtos, params, func(o OrderDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &page, nil
}

// OrderEvents returns the journal of an order, which outlives the order row.
func (s *service) OrderEvents(ctx context.Context, id uuid.UUID) ([]outbox.Entry, error) {
	entries, err := s.journal.Timeline(ctx, enums.AggregateOrder, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order events")
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return entries, nil
}

func (s *service) lockOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.LockOrder(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// giveBackStock releases an open reservation or restocks a reduction.
func (s *service) giveBackStock(ctx context.Context, tx *gorm.DB, order *models.Order) (string, error) {
	switch {
	case order.StockReserved:
		return stockActionRelease, s.stock.Release(ctx, tx, orderLines(order))
	case order.StockReduced:
		return stockActionRestock, s.stock.Restock(ctx, tx, orderLines(order))
	default:
		return "", nil
	}
}

func (s *service) mutationError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejected(strings.ToLower(string(typed.Code())))
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func (s *service) logInfo(ctx context.Context, id uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithOrderID(ctx, id.String()), msg)
}

func orderLines(order *models.Order) []inventory.Line {
	lines := make([]inventory.Line, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, inventory.Line{SizeStockID: item.SizeStockID, Quantity: item.Quantity})
	}
	return lines
}

// unitPrice applies the product discount to the locked row's price.
func unitPrice(row models.SizeStock) decimal.Decimal {
	discount := 0
	if row.ProductColor != nil && row.ProductColor.Product != nil {
		discount = row.ProductColor.Product.DiscountPercentage
	}
	return products.DiscountedPrice(row.Price, discount)
}

// normalizeCreateInput trims customer fields and merges repeated lines while
// keeping first-seen order.
func normalizeCreateInput(input *CreateOrderInput) ([]ItemInput, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.City = strings.TrimSpace(input.City)
	input.Address = trimOptional(input.Address)
	input.GuestSessionID = trimOptional(input.GuestSessionID)
	input.ShippingOption = trimOptional(input.ShippingOption)

	switch {
	case input.CustomerName == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name is required")
	case len([]rune(input.CustomerName)) > maxCustomerNameLen:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name is too long")
	case !phoneRe.MatchString(input.Phone):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is invalid")
	case input.City == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	case len([]rune(input.City)) > maxCityLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is too long")
	case input.ShippingCost.IsNegative():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping_cost cannot be negative")
	case len(input.Items) == 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	index := make(map[uuid.UUID]int, len(input.Items))
	merged := make([]ItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		if item.SizeStockID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_stock_id is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"size_stock_id": item.SizeStockID})
		}
		if i, ok := index[item.SizeStockID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.SizeStockID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func buildOrderDTO(order models.Order, currency string) OrderDTO {
	dto := OrderDTO{
		ID:             order.ID,
		RefID:          order.RefID,
		CustomerName:   order.CustomerName,
		Phone:          order.Phone,
		City:           order.City,
		Address:        order.Address,
		GuestSessionID: order.GuestSessionID,
		ShippingOption: order.ShippingOption,
		Status:         order.Status,
		StockReserved:  order.StockReserved,
		StockReduced:   order.StockReduced,
		Items:          make([]OrderItemDTO, 0, len(order.Items)),
		Subtotal:       decimal.Zero,
		ShippingCost:   order.ShippingCost,
		Currency:       currency,
		ConfirmedAt:    order.ConfirmedAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, item := range order.Items {
		line := item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemDTO := OrderItemDTO{
			ID:              item.ID,
			SizeStockID:     item.SizeStockID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       line,
		}
		if stock := item.SizeStock; stock != nil {
			itemDTO.SizeLabel = stock.Size.Label
			if variant := stock.ProductColor; variant != nil {
				itemDTO.ColorName = variant.Color.Name
				if variant.Product != nil {
					productID := variant.Product.ID
					itemDTO.ProductID = &productID
					itemDTO.ProductName = variant.Product.Name
				}
				itemDTO.ImageURL = primaryImage(variant.Images)
			}
		}
		dto.Items = append(dto.Items, itemDTO)
		dto.ItemCount += item.Quantity
		dto.Subtotal = dto.Subtotal.Add(line)
	}
	dto.GrandTotal = dto.Subtotal.Add(dto.ShippingCost)
	return dto
}

func primaryImage(images []models.ProductImage) *string {
	var chosen *models.ProductImage
	for i := range images {
		img := &images[i]
		if img.IsPrimary {
			chosen = img
			break
		}
		if chosen == nil || img.SortOrder < chosen.SortOrder {
			chosen = img
		}
	}
	if chosen == nil {
		return nil
	}
	url := chosen.URL
	return &url
}
