package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// RequestStatus represents the status of a custom shop request
type RequestStatus int

const (
	RequestStatusNew       RequestStatus = 0
	RequestStatusReviewing RequestStatus = 1
	RequestStatusQuoted    RequestStatus = 2
	RequestStatusDeclined  RequestStatus = 3
	RequestStatusConverted RequestStatus = 4
)

func (s RequestStatus) String() string {
	return [...]string{"New", "Reviewing", "Quoted", "Declined", "Converted"}[s]
}

func (s RequestStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RequestStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = RequestStatus(i)
		return nil
	}
	switch str {
	case "New":
		*s = RequestStatusNew
	case "Reviewing":
		*s = RequestStatusReviewing
	case "Quoted":
		*s = RequestStatusQuoted
	case "Declined":
		*s = RequestStatusDeclined
	case "Converted":
		*s = RequestStatusConverted
	}
	return nil
}

func (s RequestStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RequestStatus) Scan(value interface{}) error {
	if value == nil {
		*s = RequestStatusNew
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RequestStatus(v)
	case int:
		*s = RequestStatus(v)
	}
	return nil
}
