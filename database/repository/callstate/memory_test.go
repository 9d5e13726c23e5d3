package callstate

import (
	"context"
	"testing"
	"time"

	"receptionist/models"
)

func TestGetAbsentReturnsNil(t *testing.T) {
	store := NewMemoryStore()
	cc, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cc != nil {
		t.Errorf("expected nil for absent key, got %+v", cc)
	}
}

func TestPutPreservesCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	cc := models.NewCallContext("CA1", "+920000000001")
	if err := store.Put(context.Background(), cc); err != nil {
		t.Fatal(err)
	}
	first, err := store.Get(context.Background(), "CA1")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	first.CallerName = "Sara"
	first.CreatedAt = time.Time{}
	if err := store.Put(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	second, err := store.Get(context.Background(), "CA1")
	if err != nil {
		t.Fatal(err)
	}
	if !second.CreatedAt.Equal(cc.CreatedAt) {
		t.Errorf("CreatedAt changed across Put: %v -> %v", cc.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(second.CreatedAt) {
		t.Errorf("UpdatedAt not advanced: %v vs %v", second.UpdatedAt, second.CreatedAt)
	}
	if second.CallerName != "Sara" {
		t.Errorf("update lost: %+v", second)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Put(context.Background(), models.NewCallContext("CA1", "+920000000001")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(context.Background(), "CA1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), "CA1"); err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}
	cc, _ := store.Get(context.Background(), "CA1")
	if cc != nil {
		t.Error("context survived delete")
	}
}
