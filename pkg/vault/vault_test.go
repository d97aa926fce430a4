package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

func TestListStartsUnfetched(t *testing.T) {
	v := New()
	docs := v.List(context.Background())
	if len(docs) != 5 {
		t.Fatalf("docs = %d, want 5", len(docs))
	}
	for _, doc := range docs {
		if doc.Status != types.StatusNotFetched {
			t.Fatalf("doc %s status = %s", doc.ID, doc.Status)
		}
		if doc.Data != nil {
			t.Fatalf("doc %s has data before fetch", doc.ID)
		}
	}
}

func TestFetchTransitions(t *testing.T) {
	ctx := context.Background()
	v := New()

	doc, err := v.Fetch(ctx, "aadhaar")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Status != types.StatusFetched {
		t.Fatalf("status = %s", doc.Status)
	}
	if doc.Data["Full Name"] != "Priya Sharma" {
		t.Fatalf("data = %v", doc.Data)
	}

	got, err := v.Get(ctx, "aadhaar")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != types.StatusFetched {
		t.Fatal("fetch did not persist")
	}
}

func TestFetchIdempotent(t *testing.T) {
	ctx := context.Background()
	v := New()
	first, _ := v.Fetch(ctx, "pan")
	second, err := v.Fetch(ctx, "pan")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if second.Data["PAN"] != first.Data["PAN"] {
		t.Fatalf("fetch not deterministic: %v vs %v", first.Data, second.Data)
	}
}

func TestFetchUnknown(t *testing.T) {
	v := New()
	if _, err := v.Fetch(context.Background(), "passport"); !errors.Is(err, ErrUnknownDocument) {
		t.Fatalf("err = %v, want ErrUnknownDocument", err)
	}
}

func TestFetchedFields(t *testing.T) {
	ctx := context.Background()
	v := New()
	if got := v.FetchedFields(ctx); len(got) != 0 {
		t.Fatalf("fields before fetch = %v", got)
	}

	v.Fetch(ctx, "aadhaar")
	v.Fetch(ctx, "pan")
	fields := v.FetchedFields(ctx)
	if fields["Aadhaar Number"] == "" || fields["PAN"] == "" {
		t.Fatalf("fields = %v", fields)
	}
}
