package booking

import (
	"context"
	"time"

	domain "github.com/townbook-za/townbook/internal/domain/booking"
	"github.com/townbook-za/townbook/internal/httperr"
)

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	svc, err := uc.repo.GetService(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	weekday := int(in.Date.Weekday())

	wh, err := uc.repo.GetWorkingHours(ctx, in.BusinessID, weekday)
	if err != nil || !wh.Active {
		return []domain.TimeSlot{}, nil
	}

	loc := in.Date.Location()

	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(
			in.Date.Year(), in.Date.Month(), in.Date.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	dayStart := parseHM(wh.StartTime)
	dayEnd := parseHM(wh.EndTime)

	hasBreak := wh.BreakStart != "" && wh.BreakEnd != ""
	var breakStart, breakEnd time.Time
	if hasBreak {
		breakStart = parseHM(wh.BreakStart)
		breakEnd = parseHM(wh.BreakEnd)
	}

	bookings, err := uc.repo.ListBookingsForDay(
		ctx,
		in.BusinessID,
		dayStart,
		dayEnd,
	)
	if err != nil {
		return nil, err
	}

	slotDuration := time.Duration(svc.DurationMin) * time.Minute
	var slots []domain.TimeSlot

	bkIdx := 0

	for cur := dayStart; cur.Add(slotDuration).Before(dayEnd) || cur.Add(slotDuration).Equal(dayEnd); cur = cur.Add(slotDuration) {

		slotStart := cur
		slotEnd := cur.Add(slotDuration)

		if hasBreak && slotStart.Before(breakEnd) && slotEnd.After(breakStart) {
			continue
		}

		// skip bookings that ended before this slot
		for bkIdx < len(bookings) && bookings[bkIdx].EndTime.Before(slotStart) {
			bkIdx++
		}

		conflict := false
		if bkIdx < len(bookings) {
			bk := bookings[bkIdx]
			if slotStart.Before(bk.EndTime) && slotEnd.After(bk.StartTime) {
				conflict = true
			}
		}

		if !conflict {
			slots = append(slots, domain.TimeSlot{
				Start: slotStart.Format("15:04"),
				End:   slotEnd.Format("15:04"),
			})
		}
	}

	return slots, nil
}
