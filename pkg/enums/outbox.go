package enums

// OutboxAggregateType names the aggregate a journal event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateProduct OutboxAggregateType = "product"
)

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder || a == AggregateProduct
}

// OutboxEventType is the journal entry kind.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderApproved      OutboxEventType = "order_approved"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderDeleted       OutboxEventType = "order_deleted"
	EventStockAdjusted      OutboxEventType = "stock_adjusted"
)

var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventOrderCreated:       AggregateOrder,
	EventOrderApproved:      AggregateOrder,
	EventOrderStatusChanged: AggregateOrder,
	EventOrderDeleted:       AggregateOrder,
	EventStockAdjusted:      AggregateProduct,
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// Aggregate returns the aggregate type events of this kind are filed under.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}
