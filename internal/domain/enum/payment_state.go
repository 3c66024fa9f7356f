package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentState represents the lifecycle state of a single payment record
type PaymentState int

const (
	PaymentStatePending    PaymentState = 0
	PaymentStateAuthorized PaymentState = 1
	PaymentStateCaptured   PaymentState = 2
	PaymentStateFailed     PaymentState = 3
	PaymentStateRefunded   PaymentState = 4
)

var paymentStateNames = [...]string{"pending", "authorized", "captured", "failed", "refunded"}

func (s PaymentState) String() string {
	if int(s) < 0 || int(s) >= len(paymentStateNames) {
		return "pending"
	}
	return paymentStateNames[s]
}

func (s PaymentState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentState(i)
		return nil
	}
	for i, name := range paymentStateNames {
		if name == str {
			*s = PaymentState(i)
			return nil
		}
	}
	return nil
}

func (s PaymentState) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentState) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatePending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentState(v)
	case int:
		*s = PaymentState(v)
	}
	return nil
}
