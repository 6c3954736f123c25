package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbook-za/townbook/internal/audit"
	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
)

func nopAudit() *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(nil), zerolog.Nop())
}

func createInput(start time.Time) CreateBookingInput {
	return CreateBookingInput{
		BusinessID:    1,
		CustomerName:  "Thandi M",
		CustomerPhone: "0821234567",
		ServiceID:     2,
		Date:          start.Format("2006-01-02"),
		Time:          start.Format("15:04"),
	}
}

func TestCreateBooking_Pending(t *testing.T) {
	repo := availabilityFixture()
	uc := NewCreateBooking(repo, nopAudit())

	start := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
	bk, err := uc.Execute(context.Background(), createInput(start))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), bk.Status)
	assert.Equal(t, 60*time.Minute, bk.EndTime.Sub(bk.StartTime))
	require.Len(t, repo.created, 1)
}

func TestCreateBooking_TooSoon(t *testing.T) {
	repo := availabilityFixture()
	uc := NewCreateBooking(repo, nopAudit())

	start := time.Now().UTC().Add(30 * time.Minute)
	_, err := uc.Execute(context.Background(), createInput(start))
	assert.True(t, httperr.IsBusiness(err, "too_soon"))
}

func TestCreateBooking_OutsideWorkingHours(t *testing.T) {
	repo := availabilityFixture()
	repo.outsideHours = true
	uc := NewCreateBooking(repo, nopAudit())

	start := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
	_, err := uc.Execute(context.Background(), createInput(start))
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))
}

func TestCreateBooking_Conflict(t *testing.T) {
	repo := availabilityFixture()
	repo.conflictErr = httperr.ErrBusiness("time_conflict")
	uc := NewCreateBooking(repo, nopAudit())

	start := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
	_, err := uc.Execute(context.Background(), createInput(start))
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
}

func TestCreateBooking_SuspendedBusiness(t *testing.T) {
	repo := availabilityFixture()
	repo.business.Status = "suspended"
	uc := NewCreateBooking(repo, nopAudit())

	start := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
	_, err := uc.Execute(context.Background(), createInput(start))
	assert.True(t, httperr.IsBusiness(err, "business_not_active"))
}

func TestCreateBooking_InactiveService(t *testing.T) {
	repo := availabilityFixture()
	repo.service.Active = false
	uc := NewCreateBooking(repo, nopAudit())

	start := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
	_, err := uc.Execute(context.Background(), createInput(start))
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}
