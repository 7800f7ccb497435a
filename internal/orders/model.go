package orders

import "time"

// OrderStatus tracks a print order through production.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "PENDING"
	OrderStatusInProduction OrderStatus = "IN_PRODUCTION"
	OrderStatusReady        OrderStatus = "READY"
	OrderStatusCompleted    OrderStatus = "COMPLETED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

// Order is a customer's print job request.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Status    OrderStatus `json:"status"`
	Notes     *string     `json:"notes,omitempty"`
	FilePath  *string     `json:"file_path,omitempty"`
	FileURL   *string     `json:"file_url,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderWithCustomer denormalises customer fields for the staff listing.
type OrderWithCustomer struct {
	Order
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// allowedTransitions encodes the production lifecycle. Cancellation is
// reachable from any non-terminal state.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:      {OrderStatusInProduction, OrderStatusCancelled},
	OrderStatusInProduction: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:        {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether moving from to next is valid.
func CanTransition(from, next OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == next {
			return true
		}
	}
	return false
}
