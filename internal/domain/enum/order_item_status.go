package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderItemStatus represents the fulfillment status of a single line item
type OrderItemStatus int

const (
	OrderItemStatusPending   OrderItemStatus = 0
	OrderItemStatusPreparing OrderItemStatus = 1
	OrderItemStatusReady     OrderItemStatus = 2
	OrderItemStatusDelivered OrderItemStatus = 3
	OrderItemStatusCancelled OrderItemStatus = 4
)

var orderItemStatusNames = [...]string{"pending", "preparing", "ready", "delivered", "cancelled"}

func (s OrderItemStatus) String() string {
	if int(s) < 0 || int(s) >= len(orderItemStatusNames) {
		return "pending"
	}
	return orderItemStatusNames[s]
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderItemStatus) IsTerminal() bool {
	return s == OrderItemStatusDelivered || s == OrderItemStatusCancelled
}

// CanTransitionTo reports whether the forward step to next is legal.
// Forward moves go one step at a time; cancellation is allowed from any
// non-terminal state.
func (s OrderItemStatus) CanTransitionTo(next OrderItemStatus) bool {
	if next == OrderItemStatusCancelled {
		return !s.IsTerminal()
	}
	return next == s+1 && !s.IsTerminal()
}

func (s OrderItemStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderItemStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderItemStatus(i)
		return nil
	}
	for i, name := range orderItemStatusNames {
		if name == str {
			*s = OrderItemStatus(i)
			return nil
		}
	}
	return nil
}

func (s OrderItemStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderItemStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderItemStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderItemStatus(v)
	case int:
		*s = OrderItemStatus(v)
	}
	return nil
}
