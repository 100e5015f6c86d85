package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoteType(t *testing.T) {
	assert.Equal(t, NoteTypeMilestone, ParseNoteType("milestone"))
	assert.Equal(t, NoteTypeStatusChange, ParseNoteType("status_change"))

	// Unknown and empty names fall back to general
	assert.Equal(t, NoteTypeGeneral, ParseNoteType(""))
	assert.Equal(t, NoteTypeGeneral, ParseNoteType("gossip"))
}

func TestNoteTypeJSON(t *testing.T) {
	data, err := json.Marshal(NoteTypeQualityCheck)
	require.NoError(t, err)
	assert.Equal(t, `"quality_check"`, string(data))

	var parsed NoteType
	require.NoError(t, json.Unmarshal([]byte(`"issue"`), &parsed))
	assert.Equal(t, NoteTypeIssue, parsed)

	require.NoError(t, json.Unmarshal([]byte(`1`), &parsed))
	assert.Equal(t, NoteTypeMilestone, parsed)
}
