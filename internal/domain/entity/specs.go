package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// SpecMap holds a guitar's build specifications keyed by category, e.g.
// {"body_wood": "Alder", "pickups": "HSS"}. Stored as jsonb.
type SpecMap map[string]string

// Value implements driver.Valuer for jsonb storage
func (m SpecMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for jsonb storage
func (m *SpecMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("unsupported type for SpecMap")
}

// SpecConstraints lists the allowed values per spec category for a run, e.g.
// {"body_wood": ["Alder", "Ash"]}. Categories absent from the map accept any
// value. Stored as jsonb.
type SpecConstraints map[string][]string

// Allows reports whether the value is permitted for the category
func (c SpecConstraints) Allows(category, value string) bool {
	allowed, constrained := c[category]
	if !constrained {
		return true
	}
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for jsonb storage
func (c SpecConstraints) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for jsonb storage
func (c *SpecConstraints) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return errors.New("unsupported type for SpecConstraints")
}
