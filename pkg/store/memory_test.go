package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	session := &types.ChatSession{
		ID:       "s1",
		Title:    "Passport help",
		Language: "en",
		Turns:    []types.ConversationTurn{{ID: "t1", Role: types.RoleUser, Content: "hello"}},
	}
	if err := repo.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Passport help" || len(got.Turns) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not assigned")
	}
}

func TestMemoryGetMissing(t *testing.T) {
	repo := NewMemory()
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryPutPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	session := &types.ChatSession{ID: "s1", Title: "v1"}
	if err := repo.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}
	first, _ := repo.Get(ctx, "s1")

	time.Sleep(5 * time.Millisecond)
	session.Title = "v2"
	if err := repo.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}
	second, _ := repo.Get(ctx, "s1")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated at did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.Title != "v2" {
		t.Fatalf("title = %q", second.Title)
	}
}

func TestMemoryListOrdersByRecency(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	for _, id := range []string{"old", "new"} {
		if err := repo.Put(ctx, &types.ChatSession{ID: id}); err != nil {
			t.Fatalf("put: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	sessions, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "new" {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	repo.Put(ctx, &types.ChatSession{ID: "s1"})

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryPutRequiresID(t *testing.T) {
	repo := NewMemory()
	if err := repo.Put(context.Background(), &types.ChatSession{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	repo.Put(ctx, &types.ChatSession{
		ID:    "s1",
		Turns: []types.ConversationTurn{{ID: "t1", Content: "original"}},
	})

	got, _ := repo.Get(ctx, "s1")
	got.Turns[0].Content = "mutated"

	again, _ := repo.Get(ctx, "s1")
	if again.Turns[0].Content != "original" {
		t.Fatalf("stored turn was mutated: %q", again.Turns[0].Content)
	}
}
