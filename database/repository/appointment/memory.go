package appointmentRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"receptionist/models"
	"receptionist/utils"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository used in tests and local development.
// It applies the same conflict and transition rules as the Mongo
// implementation, with the conflict check and insert done under one lock.
type MemoryRepo struct {
	mu           sync.Mutex
	appts        []models.Appointment
	callerCounts map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{callerCounts: make(map[string]int)}
}

func (r *MemoryRepo) Create(ctx context.Context, appt *models.Appointment) (string, error) {
	startMin, err := utils.MinutesOfDay(appt.AppointmentTime)
	if err != nil {
		return "", err
	}
	endMin := startMin + appt.DurationMinutes

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appts {
		if existing.AppointmentDate != appt.AppointmentDate || existing.Status == models.StatusCancelled {
			continue
		}
		if conflictsWith(existing, startMin, endMin) {
			return "", ErrSlotTaken
		}
	}

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.Status = models.StatusScheduled
	appt.CreatedAt = time.Now()
	r.appts = append(r.appts, *appt)
	if appt.CallerID != "" {
		r.callerCounts[appt.CallerID]++
	}
	return appt.ID, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].ID == id {
			a := r.appts[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepo) GetForDate(ctx context.Context, date string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if a.AppointmentDate == date && a.Status != models.StatusCancelled {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentTime < out[j].AppointmentTime
	})
	return out, nil
}

func (r *MemoryRepo) GetAll(ctx context.Context, limit int64) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, len(r.appts))
	copy(out, r.appts)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) GetByCallerPhone(ctx context.Context, phone string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if a.CallerPhone == phone {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate != out[j].AppointmentDate {
			return out[i].AppointmentDate > out[j].AppointmentDate
		}
		return out[i].AppointmentTime > out[j].AppointmentTime
	})
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].ID == id {
			if err := models.CanTransition(r.appts[i].Status, status); err != nil {
				return err
			}
			r.appts[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

// CallerAppointmentCount reports the bookings counted for a caller ID.
func (r *MemoryRepo) CallerAppointmentCount(callerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callerCounts[callerID]
}
