// Package vault simulates a DigiLocker-style document vault. Documents and
// their fetched field data are deterministic mock records; there is no real
// government integration.
package vault

import (
	"context"
	"errors"
	"sync"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// ErrUnknownDocument is returned for ids the vault does not know.
var ErrUnknownDocument = errors.New("unknown vault document")

// Vault holds the citizen's simulated identity documents.
type Vault struct {
	mu   sync.Mutex
	docs []types.VaultDocument
}

// New returns a vault seeded with the standard set of Indian identity
// documents, all initially unfetched.
func New() *Vault {
	return &Vault{docs: []types.VaultDocument{
		{ID: "aadhaar", Name: "Aadhaar Card", Status: types.StatusNotFetched},
		{ID: "pan", Name: "PAN Card", Status: types.StatusNotFetched},
		{ID: "voter", Name: "Voter ID", Status: types.StatusNotFetched},
		{ID: "license", Name: "Driving License", Status: types.StatusNotFetched},
		{ID: "ration", Name: "Ration Card", Status: types.StatusNotFetched},
	}}
}

// mockData simulates the field payload returned by the issuing authority.
var mockData = map[string]map[string]string{
	"aadhaar": {
		"Full Name":      "Priya Sharma",
		"Aadhaar Number": "XXXX XXXX 4821",
		"Date of Birth":  "14/08/1992",
		"Address":        "42, Gandhi Road, Chennai, Tamil Nadu 600001",
	},
	"pan": {
		"Full Name":     "Priya Sharma",
		"PAN":           "ABCDE1234F",
		"Father's Name": "Rajesh Sharma",
	},
	"voter": {
		"Full Name": "Priya Sharma",
		"EPIC":      "TN/01/123/456789",
		"Assembly":  "Chennai Central",
	},
	"license": {
		"Full Name":      "Priya Sharma",
		"License Number": "TN01 20220004821",
		"Valid Till":     "13/08/2042",
	},
	"ration": {
		"Full Name":   "Priya Sharma",
		"Card Number": "TN-RC-3344556",
		"Category":    "APL",
	},
}

// List returns the documents in their fixed order.
func (v *Vault) List(ctx context.Context) []types.VaultDocument {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]types.VaultDocument, len(v.docs))
	copy(out, v.docs)
	return out
}

// Get returns one document by id.
func (v *Vault) Get(ctx context.Context, id string) (*types.VaultDocument, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, doc := range v.docs {
		if doc.ID == id {
			out := doc
			return &out, nil
		}
	}
	return nil, ErrUnknownDocument
}

// Fetch transitions a document to FETCHED and attaches its simulated field
// data. Fetching an already-fetched document is a no-op.
func (v *Vault) Fetch(ctx context.Context, id string) (*types.VaultDocument, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.docs {
		if v.docs[i].ID != id {
			continue
		}
		if v.docs[i].Status != types.StatusFetched {
			v.docs[i].Status = types.StatusFetched
			v.docs[i].Data = mockData[id]
		}
		out := v.docs[i]
		return &out, nil
	}
	return nil, ErrUnknownDocument
}

// FetchedFields flattens every fetched document's data into one key/value
// mapping, used to give the assistant context about the citizen.
func (v *Vault) FetchedFields(ctx context.Context) map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string)
	for _, doc := range v.docs {
		if doc.Status != types.StatusFetched {
			continue
		}
		for k, val := range doc.Data {
			out[k] = val
		}
	}
	return out
}
