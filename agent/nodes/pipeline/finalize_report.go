package pipelinenode

import (
	"fmt"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// BuildReport turns the per-run state into the terminal report. Every
// run ends with exactly one decision; reaching this node without one is
// a pipeline bug.
func BuildReport(st *GraphState) (*GraphState, error) {
	if st == nil || st.Memory == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if !st.Terminal || st.Decision == "" {
		return nil, fmt.Errorf("%w: run reached finalize without a terminal decision", contractx.ErrValidation)
	}

	st.Report = &contractx.RunReport{
		RunID:         st.RunID,
		CustomerID:    st.Input.CustomerID,
		Decision:      st.Decision,
		Rationale:     st.Rationale,
		ExecutionPath: append([]contractx.StageID(nil), st.Path...),
		MemoryKeys:    st.Memory.Keys(),
		Memory:        st.Memory.Snapshot(),
		Verification:  st.Verification,
		Compliance:    st.Compliance,
		CompletedAt:   st.Now,
	}
	return st, nil
}

func FinalizeReply(st *GraphState) (GraphOutput, error) {
	if st == nil || st.Report == nil {
		return GraphOutput{}, fmt.Errorf("%w: run report is missing", contractx.ErrValidation)
	}
	return GraphOutput{Report: st.Report}, nil
}
