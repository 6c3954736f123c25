package timezone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("Africa/Johannesburg"))
	assert.True(t, IsValid("UTC"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("Not/AZone"))
}

func TestLocationFallsBackToDefault(t *testing.T) {
	loc := Location("Not/AZone")
	assert.Equal(t, DefaultTimezone, loc.String())

	loc = Location("")
	assert.Equal(t, DefaultTimezone, loc.String())
}

func TestLocationHonoursValidZone(t *testing.T) {
	loc := Location("Europe/Lisbon")
	assert.Equal(t, "Europe/Lisbon", loc.String())
}
