package pipelinenode

import (
	"fmt"
	"strings"
	"time"

	statex "github.com/verifyd/kyc-agent-pipeline/agent/state"
)

// ValidateRequest checks the incoming request and seeds the per-run
// memory. This runs before any agent, so a bad request never consumes
// a model call.
func ValidateRequest(in GraphInput, runID string, now time.Time) (*GraphState, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidRequest)
	}
	in.CustomerID = customerID

	mem := statex.NewMemory()
	mem.Set(statex.KeyCustomerID, customerID)
	mem.Set(statex.KeyCustomerInput, in.CustomerInput)

	return &GraphState{
		RunID:  runID,
		Now:    now,
		Input:  in,
		Memory: mem,
	}, nil
}
