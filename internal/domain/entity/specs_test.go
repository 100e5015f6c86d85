package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecConstraintsAllows(t *testing.T) {
	constraints := SpecConstraints{
		"body_wood": {"Alder", "Ash"},
		"pickups":   {"SSS"},
	}

	assert.True(t, constraints.Allows("body_wood", "Alder"))
	assert.False(t, constraints.Allows("body_wood", "Basswood"))
	assert.False(t, constraints.Allows("pickups", "HSS"))

	// Unconstrained categories accept anything
	assert.True(t, constraints.Allows("finish", "Shell Pink"))

	var none SpecConstraints
	assert.True(t, none.Allows("body_wood", "Basswood"))
}

func TestSpecMapJSONBRoundTrip(t *testing.T) {
	specs := SpecMap{"body_wood": "Alder", "pickups": "HSS"}

	value, err := specs.Value()
	require.NoError(t, err)

	var scanned SpecMap
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, specs, scanned)

	var fromNil SpecMap
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	var nilMap SpecMap
	value, err = nilMap.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSpecConstraintsJSONBRoundTrip(t *testing.T) {
	constraints := SpecConstraints{"body_wood": {"Alder", "Ash"}}

	value, err := constraints.Value()
	require.NoError(t, err)

	var scanned SpecConstraints
	require.NoError(t, scanned.Scan(string(value.([]byte))))
	assert.Equal(t, constraints, scanned)

	assert.Error(t, scanned.Scan(42))
}
