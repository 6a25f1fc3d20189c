package models

import (
	"context"
	"sync"
	"testing"
	"time"
)

// Regression: with one seat left, two concurrent registrations must resolve
// to exactly one success; the loser gets the capacity error, not a second row.
func TestRegisterForEvent_ConcurrentRegistrationsRespectCapacity(t *testing.T) {
	setupIntegrationEnv(t)
	ctx := context.Background()

	event, err := CreateEvent(ctx, &NewEvent{
		Title:     "Nieuwjaarsborrel",
		EventDate: time.Now().Add(30 * 24 * time.Hour),
		Capacity:  1,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	memberA, err := CreateMember(ctx, &NewMember{FirstName: "Kees", LastName: "Bakker"})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	memberB, err := CreateMember(ctx, &NewMember{FirstName: "Els", LastName: "Visser"})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, memberId := range []int{memberA.ID, memberB.ID} {
		wg.Add(1)
		go func(slot, memberId int) {
			defer wg.Done()
			_, errs[slot] = RegisterForEvent(ctx, &NewEventRegistration{
				EventId:  event.ID,
				MemberId: memberId,
			})
		}(i, memberId)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if err.Error() != "event is full" {
			t.Fatalf("expected capacity error; got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful registration; got %d", succeeded)
	}

	refreshed, err := GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if len(refreshed.Registrations) != 1 {
		t.Fatalf("expected 1 registration row; got %d", len(refreshed.Registrations))
	}
}
