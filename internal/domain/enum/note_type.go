package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// NoteType classifies a guitar note
type NoteType int

const (
	NoteTypeUpdate       NoteType = 0
	NoteTypeMilestone    NoteType = 1
	NoteTypeQualityCheck NoteType = 2
	NoteTypeIssue        NoteType = 3
	NoteTypeStatusChange NoteType = 4
	NoteTypeGeneral      NoteType = 5
)

var noteTypeNames = [...]string{"update", "milestone", "quality_check", "issue", "status_change", "general"}

func (t NoteType) String() string {
	if int(t) < 0 || int(t) >= len(noteTypeNames) {
		return "general"
	}
	return noteTypeNames[t]
}

// ParseNoteType maps a wire name to a NoteType, defaulting to general
func ParseNoteType(s string) NoteType {
	for i, name := range noteTypeNames {
		if name == s {
			return NoteType(i)
		}
	}
	return NoteTypeGeneral
}

func (t NoteType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *NoteType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = NoteType(i)
		return nil
	}
	*t = ParseNoteType(str)
	return nil
}

func (t NoteType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *NoteType) Scan(value interface{}) error {
	if value == nil {
		*t = NoteTypeUpdate
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = NoteType(v)
	case int:
		*t = NoteType(v)
	}
	return nil
}
