package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	statex "github.com/verifyd/kyc-agent-pipeline/agent/state"
)

func ClassifyIntent(
	ctx context.Context,
	st *GraphState,
	classifier contractx.IntentClassifier,
) (*GraphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	st.visit(contractx.StageIntentClassifier)

	resp, err := classifier.Classify(ctx, contractx.ClassifyRequest{
		CustomerID:    st.Input.CustomerID,
		CustomerInput: st.Input.CustomerInput,
	})
	if err != nil {
		// Stage errors never escape the run: same safety net as a
		// model failure.
		st.terminate(contractx.DecisionManualReview, "intent classification failed, deferring to manual review")
		log.Warn().Str("run_id", st.RunID).Err(err).Msg("classifier error, terminating in manual review")
		return st, nil
	}

	applyRouting(st, contractx.StageIntentClassifier, resp.Routing, resp.Fallback)
	if st.Terminal {
		return st, nil
	}

	st.Intent = resp
	st.Memory.Set(statex.KeyIntent, resp.Intent)

	log.Info().
		Str("run_id", st.RunID).
		Str("intent", string(resp.Intent)).
		Float64("confidence", resp.Confidence).
		Msg("intent classified, routing to document retrieval")

	return st, nil
}
