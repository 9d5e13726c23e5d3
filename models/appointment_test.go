package models

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		current string
		next    string
		allowed bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusConfirmed, false},
		{StatusScheduled, "imaginary", false},
		{StatusScheduled, StatusScheduled, false},
	}
	for _, tt := range tests {
		err := CanTransition(tt.current, tt.next)
		if tt.allowed && err != nil {
			t.Errorf("CanTransition(%s, %s) unexpectedly rejected: %v", tt.current, tt.next, err)
		}
		if !tt.allowed && !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("CanTransition(%s, %s) = %v, want ErrInvalidTransition", tt.current, tt.next, err)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if ValidStatus("pending") {
		t.Error("unknown status accepted")
	}
}
