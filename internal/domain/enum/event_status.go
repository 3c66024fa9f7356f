package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// EventStatus represents the lifecycle state of a sales context
type EventStatus int

const (
	EventStatusDraft  EventStatus = 0
	EventStatusActive EventStatus = 1
	EventStatusClosed EventStatus = 2
)

var eventStatusNames = [...]string{"draft", "active", "closed"}

func (s EventStatus) String() string {
	if int(s) < 0 || int(s) >= len(eventStatusNames) {
		return "draft"
	}
	return eventStatusNames[s]
}

func (s EventStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *EventStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = EventStatus(i)
		return nil
	}
	for i, name := range eventStatusNames {
		if name == str {
			*s = EventStatus(i)
			return nil
		}
	}
	return nil
}

func (s EventStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *EventStatus) Scan(value interface{}) error {
	if value == nil {
		*s = EventStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = EventStatus(v)
	case int:
		*s = EventStatus(v)
	}
	return nil
}
