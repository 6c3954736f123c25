package httperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessCode(t *testing.T) {
	err := ErrBusiness("time_conflict")

	code, ok := BusinessCode(err)
	assert.True(t, ok)
	assert.Equal(t, "time_conflict", code)

	_, ok = BusinessCode(errors.New("plain failure"))
	assert.False(t, ok)
}

func TestIsBusinessUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("creating booking: %w", ErrBusiness("outside_working_hours"))

	assert.True(t, IsBusiness(err, "outside_working_hours"))
	assert.False(t, IsBusiness(err, "time_conflict"))
}
