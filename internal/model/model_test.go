package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservationKey(t *testing.T) {
	assert.Equal(t, "national", ObservationKey(nil))

	id := "loc-1"
	assert.Equal(t, "loc-1", ObservationKey(&id))
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "Birmingham-Hoover|AL", LocationKey("Birmingham-Hoover", "AL"))
	assert.Equal(t, "|AL", LocationKey("", "AL"))
}

func TestLocationIsCityLevel(t *testing.T) {
	assert.True(t, Location{City: "Birmingham-Hoover", State: "AL"}.IsCityLevel())
	assert.False(t, Location{City: "", State: "AL"}.IsCityLevel())
}
