package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// MovementType classifies a stock ledger entry
type MovementType int

const (
	MovementTypeInitial        MovementType = 0
	MovementTypeSale           MovementType = 1
	MovementTypeSaleCancelled  MovementType = 2
	MovementTypeAdjustPlus     MovementType = 3
	MovementTypeAdjustMinus    MovementType = 4
	MovementTypeInventoryCount MovementType = 5
	MovementTypeWaste          MovementType = 6
	MovementTypeTransferIn     MovementType = 7
	MovementTypeTransferOut    MovementType = 8
)

var movementTypeNames = [...]string{
	"initial",
	"sale",
	"sale_cancelled",
	"adjustment_plus",
	"adjustment_minus",
	"inventory_count",
	"waste",
	"transfer_in",
	"transfer_out",
}

func (m MovementType) String() string {
	if int(m) < 0 || int(m) >= len(movementTypeNames) {
		return "initial"
	}
	return movementTypeNames[m]
}

// IsOutbound reports whether the movement removes stock
func (m MovementType) IsOutbound() bool {
	switch m {
	case MovementTypeSale, MovementTypeAdjustMinus, MovementTypeWaste, MovementTypeTransferOut:
		return true
	}
	return false
}

func (m MovementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MovementType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = MovementType(i)
		return nil
	}
	for i, name := range movementTypeNames {
		if name == str {
			*m = MovementType(i)
			return nil
		}
	}
	return nil
}

func (m MovementType) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *MovementType) Scan(value interface{}) error {
	if value == nil {
		*m = MovementTypeInitial
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = MovementType(v)
	case int:
		*m = MovementType(v)
	}
	return nil
}
