package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OutboxStatus represents the delivery state of an outbox row
type OutboxStatus int

const (
	OutboxStatusPending OutboxStatus = 0
	OutboxStatusSent    OutboxStatus = 1
	OutboxStatusFailed  OutboxStatus = 2
)

func (s OutboxStatus) String() string {
	return [...]string{"Pending", "Sent", "Failed"}[s]
}

func (s OutboxStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OutboxStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OutboxStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = OutboxStatusPending
	case "Sent":
		*s = OutboxStatusSent
	case "Failed":
		*s = OutboxStatusFailed
	}
	return nil
}

func (s OutboxStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OutboxStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OutboxStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OutboxStatus(v)
	case int:
		*s = OutboxStatus(v)
	}
	return nil
}
