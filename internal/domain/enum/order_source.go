package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderSource represents the channel an order was submitted through
type OrderSource int

const (
	OrderSourceCounter       OrderSource = 0
	OrderSourceOnlineSession OrderSource = 1
	OrderSourceQROrder       OrderSource = 2
)

var orderSourceNames = [...]string{"counter", "online_session", "qr_order"}

func (s OrderSource) String() string {
	if int(s) < 0 || int(s) >= len(orderSourceNames) {
		return "counter"
	}
	return orderSourceNames[s]
}

func (s OrderSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderSource(i)
		return nil
	}
	for i, name := range orderSourceNames {
		if name == str {
			*s = OrderSource(i)
			return nil
		}
	}
	return nil
}

func (s OrderSource) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderSource) Scan(value interface{}) error {
	if value == nil {
		*s = OrderSourceCounter
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderSource(v)
	case int:
		*s = OrderSource(v)
	}
	return nil
}
