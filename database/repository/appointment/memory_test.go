package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"receptionist/models"
	"receptionist/utils"
)

const testDate = "2025-03-10"

func newAppt(date, clock string, duration int) *models.Appointment {
	return &models.Appointment{
		CallerName:      "Amina",
		CallerPhone:     "+920000000001",
		ServiceName:     "Haircut",
		AppointmentDate: date,
		AppointmentTime: clock,
		DurationMinutes: duration,
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		clock    string
		duration int
		wantErr  bool
	}{
		{"identical interval", "10:00", 30, true},
		{"starts inside", "10:15", 30, true},
		{"ends inside", "09:45", 30, true},
		{"spans entirely", "09:30", 120, true},
		{"back to back before", "09:30", 30, false},
		{"back to back after", "10:30", 30, false},
		{"far away", "15:00", 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepo()
			if _, err := repo.Create(context.Background(), newAppt(testDate, "10:00", 30)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			_, err := repo.Create(context.Background(), newAppt(testDate, tt.clock, tt.duration))
			if tt.wantErr && !errors.Is(err, ErrSlotTaken) {
				t.Errorf("expected ErrSlotTaken, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateAllowsSameTimeOnOtherDate(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.Create(context.Background(), newAppt(testDate, "10:00", 30)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(context.Background(), newAppt("2025-03-11", "10:00", 30)); err != nil {
		t.Errorf("different dates must not conflict: %v", err)
	}
}

func TestCreateIgnoresCancelledAppointments(t *testing.T) {
	repo := NewMemoryRepo()
	id, err := repo.Create(context.Background(), newAppt(testDate, "10:00", 30))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateStatus(context.Background(), id, models.StatusCancelled); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(context.Background(), newAppt(testDate, "10:00", 30)); err != nil {
		t.Errorf("cancelled slot should be bookable again: %v", err)
	}
}

func TestCreateRandomizedOverlapAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	durations := []int{30, 45, 60, 90}

	for trial := 0; trial < 200; trial++ {
		repo := NewMemoryRepo()
		type interval struct{ start, end int }
		var accepted []interval

		for i := 0; i < 6; i++ {
			start := 9*60 + 15*rng.Intn(28)
			duration := durations[rng.Intn(len(durations))]
			appt := newAppt(testDate, utils.ClockOfDay(start), duration)

			_, err := repo.Create(context.Background(), appt)

			overlaps := false
			for _, iv := range accepted {
				if start+duration > iv.start && start < iv.end {
					overlaps = true
					break
				}
			}
			if overlaps && !errors.Is(err, ErrSlotTaken) {
				t.Fatalf("trial %d: overlap at %s+%dm accepted (err=%v, accepted=%v)",
					trial, appt.AppointmentTime, duration, err, accepted)
			}
			if !overlaps && err != nil {
				t.Fatalf("trial %d: clear slot %s+%dm rejected: %v",
					trial, appt.AppointmentTime, duration, err)
			}
			if err == nil {
				accepted = append(accepted, interval{start, start + duration})
			}
		}
	}
}

func TestConcurrentCreateSameSlotOneWins(t *testing.T) {
	repo := NewMemoryRepo()
	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			appt := newAppt(testDate, "10:00", 30)
			appt.CallerPhone = fmt.Sprintf("+9230000000%02d", i)
			_, errs[i] = repo.Create(context.Background(), appt)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("exactly one concurrent create must win, got %d", wins)
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	repo := NewMemoryRepo()
	id, err := repo.Create(context.Background(), newAppt(testDate, "10:00", 30))
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateStatus(context.Background(), id, models.StatusConfirmed); err != nil {
		t.Fatalf("scheduled -> confirmed: %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), id, models.StatusScheduled); err == nil {
		t.Error("confirmed -> scheduled must be rejected")
	}
	if err := repo.UpdateStatus(context.Background(), id, models.StatusCompleted); err != nil {
		t.Fatalf("confirmed -> completed: %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), id, models.StatusCancelled); err == nil {
		t.Error("completed is terminal")
	}
	if err := repo.UpdateStatus(context.Background(), "missing", models.StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCountsCallerAppointments(t *testing.T) {
	repo := NewMemoryRepo()
	appt := newAppt(testDate, "10:00", 30)
	appt.CallerID = "caller-1"
	if _, err := repo.Create(context.Background(), appt); err != nil {
		t.Fatal(err)
	}
	second := newAppt(testDate, "11:00", 30)
	second.CallerID = "caller-1"
	if _, err := repo.Create(context.Background(), second); err != nil {
		t.Fatal(err)
	}
	if got := repo.CallerAppointmentCount("caller-1"); got != 2 {
		t.Errorf("caller appointment count = %d, want 2", got)
	}
}
