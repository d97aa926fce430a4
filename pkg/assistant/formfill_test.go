package assistant

import (
	"testing"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

func testForm() *FormState {
	form := NewFormState()
	form.Replace(types.FormFillState{
		Title: "Passport Application",
		Fields: []types.FormField{
			{Name: "Full Name", Section: "Personal"},
			{Name: "Father's Name", Section: "Personal"},
			{Name: "Date of Birth", Section: "Personal"},
		},
	})
	return form
}

func TestPatchExactName(t *testing.T) {
	form := testForm()
	if !form.Patch("Full Name", "Jane Doe") {
		t.Fatal("patch did not match")
	}
	if got := form.Snapshot().Fields[0].Value; got != "Jane Doe" {
		t.Fatalf("value = %q", got)
	}
}

func TestPatchFuzzyContainment(t *testing.T) {
	tests := []struct {
		name      string
		tagged    string
		wantField int
	}{
		{name: "tag is substring of stored", tagged: "name", wantField: 0},
		{name: "stored is substring of tag", tagged: "Applicant Full Name", wantField: 0},
		{name: "case insensitive", tagged: "DATE OF BIRTH", wantField: 2},
		{name: "ambiguous name resolves to first field", tagged: "Name", wantField: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := testForm()
			if !form.Patch(tt.tagged, "v") {
				t.Fatalf("patch(%q) did not match", tt.tagged)
			}
			fields := form.Snapshot().Fields
			for i, f := range fields {
				if i == tt.wantField && f.Value != "v" {
					t.Fatalf("field %d not patched: %+v", i, fields)
				}
				if i != tt.wantField && f.Value != "" {
					t.Fatalf("wrong field patched: %+v", fields)
				}
			}
		})
	}
}

func TestPatchNoMatch(t *testing.T) {
	form := testForm()
	if form.Patch("Aadhaar Number", "1234") {
		t.Fatal("patch matched a nonexistent field")
	}
}

func TestPatchAppliesToLatestState(t *testing.T) {
	form := testForm()
	form.Patch("Full Name", "Jane Doe")

	// A later whole-state replacement wins over earlier patches; a patch
	// after it applies to the new state.
	form.Replace(types.FormFillState{
		Title:  "Ration Card",
		Fields: []types.FormField{{Name: "Full Name"}},
	})
	form.Patch("Full Name", "John Doe")

	snap := form.Snapshot()
	if snap.Title != "Ration Card" || snap.Fields[0].Value != "John Doe" {
		t.Fatalf("state = %+v", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	form := testForm()
	snap := form.Snapshot()
	snap.Fields[0].Value = "mutated"
	if got := form.Snapshot().Fields[0].Value; got != "" {
		t.Fatalf("snapshot mutation leaked into state: %q", got)
	}
}

func TestScanUpdatesAppliesOnce(t *testing.T) {
	seen := make(map[string]struct{})

	updates := scanUpdates("Updated. [[UPDATE:Full Name:Jane Doe]]", seen)
	if len(updates) != 1 || updates[0] != (FieldUpdate{Field: "Full Name", Value: "Jane Doe"}) {
		t.Fatalf("updates = %+v", updates)
	}

	// The accumulated text is rescanned on the next chunk; the identical tag
	// must not reapply.
	updates = scanUpdates("Updated. [[UPDATE:Full Name:Jane Doe]] Done.", seen)
	if len(updates) != 0 {
		t.Fatalf("re-scan produced %+v", updates)
	}

	// A different value for the same field is a new update.
	updates = scanUpdates("Updated. [[UPDATE:Full Name:Jane Doe]] [[UPDATE:Full Name:Jane A. Doe]]", seen)
	if len(updates) != 1 || updates[0].Value != "Jane A. Doe" {
		t.Fatalf("updates = %+v", updates)
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags("Updated. [[UPDATE:Full Name:Jane Doe]]")
	if got != "Updated. " {
		t.Fatalf("stripped = %q, want %q", got, "Updated. ")
	}
	if got := stripTags("no tags here"); got != "no tags here" {
		t.Fatalf("stripped = %q", got)
	}
}
