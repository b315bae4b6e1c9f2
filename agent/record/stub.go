package record

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// StubStore is an in-memory record store seeded with synthetic
// customers. It is the default backend until a real database is wired.
type StubStore struct {
	records map[string]contractx.KYCRecord
}

func NewStubStore(seed ...contractx.KYCRecord) *StubStore {
	records := make(map[string]contractx.KYCRecord, len(seed))
	for _, r := range seed {
		id := strings.TrimSpace(r.CustomerID)
		if id == "" {
			continue
		}
		records[id] = r
	}
	return &StubStore{records: records}
}

// NewSeededStubStore returns a stub pre-loaded with the demo customers:
// CUST001 holds an expired record, CUST999 is unknown.
func NewSeededStubStore() *StubStore {
	return NewStubStore(contractx.KYCRecord{
		CustomerID:   "CUST001",
		Status:       contractx.RecordExpired,
		CustomerName: "Rajesh Kumar",
		DOB:          "1985-06-15",
		Documents: contractx.RecordDocuments{
			PAN:          "ABCDE1234F",
			Aadhaar:      "1234-5678-9012",
			LastVerified: "2023-01-15",
		},
	})
}

func (s *StubStore) Lookup(ctx context.Context, customerID string) (contractx.KYCRecord, error) {
	id := strings.TrimSpace(customerID)
	if id == "" {
		return contractx.KYCRecord{}, fmt.Errorf("%w: customer id is empty", contractx.ErrValidation)
	}
	r, ok := s.records[id]
	if !ok {
		return contractx.KYCRecord{}, fmt.Errorf("%w: customer_id=%s", contractx.ErrRecordNotFound, id)
	}
	return r, nil
}
