package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// retrieverImpl fetches the stored KYC record. It is the one stage
// without a model call: a pure store lookup where not-found is a valid
// business state, not a failure.
type retrieverImpl struct {
	store contractx.RecordStore
}

func NewRetriever(store contractx.RecordStore) (contractx.DocumentRetriever, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	return &retrieverImpl{store: store}, nil
}

func (r *retrieverImpl) Retrieve(ctx context.Context, req contractx.RetrieveRequest) (contractx.RetrieveResponse, error) {
	id := strings.TrimSpace(req.CustomerID)
	if id == "" {
		return contractx.RetrieveResponse{}, fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}

	rec, err := r.store.Lookup(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, contractx.ErrRecordNotFound):
		rec = contractx.KYCRecord{
			CustomerID: id,
			Status:     contractx.RecordNotFound,
		}
	default:
		// Store outage, not a missing record: terminate conservatively.
		return contractx.RetrieveResponse{
			Routing: contractx.Routing{
				Next:   contractx.StageTerminal,
				Reason: "record store unavailable, deferring to manual review",
			},
			Fallback: contractx.Fallback{
				Triggered: true,
				Cause:     err.Error(),
			},
		}, nil
	}

	return contractx.RetrieveResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageDocumentVerifier,
			Reason: "verify submitted documents",
		},
		Record: rec,
	}, nil
}
