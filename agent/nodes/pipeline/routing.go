package pipelinenode

import (
	"github.com/rs/zerolog/log"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// applyRouting interprets a stage's declared routing signal. Only two
// signals are honored: the canonical successor and the terminal marker.
// Anything else is logged and the canonical successor is taken, so the
// closed stage enum stays the actual router.
func applyRouting(st *GraphState, current contractx.StageID, routing contractx.Routing, fb contractx.Fallback) {
	if fb.Triggered {
		log.Warn().
			Str("run_id", st.RunID).
			Str("stage", string(current)).
			Str("cause", fb.Cause).
			Msg("stage fell back, terminating in manual review")
		st.terminate(contractx.DecisionManualReview, routing.Reason)
		return
	}

	if routing.Next == contractx.StageTerminal {
		return
	}

	if canonical := current.CanonicalNext(); routing.Next != canonical {
		log.Warn().
			Str("run_id", st.RunID).
			Str("stage", string(current)).
			Str("declared_next", string(routing.Next)).
			Str("canonical_next", string(canonical)).
			Msg("routing signal off the canonical chain, advancing canonically")
	}
}
