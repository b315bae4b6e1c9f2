package pipelinenode

import (
	"errors"
	"time"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	statex "github.com/verifyd/kyc-agent-pipeline/agent/state"
)

var (
	ErrInvalidRequest = errors.New("invalid run request")
)

// GraphInput is one workflow run request entering the compiled graph.
type GraphInput struct {
	CustomerID    string
	CustomerInput string
	Documents     contractx.DocumentSet
}

type GraphOutput struct {
	Report *contractx.RunReport
}

// GraphState is the per-run state threaded through the pipeline nodes.
// Each run owns its own instance (and its own Memory), so concurrent
// runs share nothing.
type GraphState struct {
	RunID string
	Now   time.Time
	Input GraphInput

	Memory *statex.Memory
	Path   []contractx.StageID

	Intent       contractx.ClassifyResponse
	Record       contractx.KYCRecord
	Verification contractx.VerificationResult
	Compliance   contractx.ComplianceResult

	Decision  contractx.Decision
	Rationale string
	Terminal  bool

	Report *contractx.RunReport
}

// visit records a stage on the execution path.
func (st *GraphState) visit(stage contractx.StageID) {
	st.Path = append(st.Path, stage)
}

// terminate fixes the run's single terminal decision. The first
// terminal outcome wins; later calls are ignored.
func (st *GraphState) terminate(decision contractx.Decision, rationale string) {
	if st.Terminal {
		return
	}
	st.Terminal = true
	st.Decision = decision
	st.Rationale = rationale
}
