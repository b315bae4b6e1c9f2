package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	statex "github.com/verifyd/kyc-agent-pipeline/agent/state"
)

func VerifyDocuments(
	ctx context.Context,
	st *GraphState,
	verifier contractx.DocumentVerifier,
) (*GraphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	st.visit(contractx.StageDocumentVerifier)

	resp, err := verifier.Verify(ctx, contractx.VerifyRequest{
		Intent:    st.Intent.Intent,
		Record:    st.Record,
		Documents: st.Input.Documents,
	})
	if err != nil {
		st.terminate(contractx.DecisionManualReview, "document verification failed, deferring to manual review")
		log.Warn().Str("run_id", st.RunID).Err(err).Msg("verifier error, terminating in manual review")
		return st, nil
	}

	applyRouting(st, contractx.StageDocumentVerifier, resp.Routing, resp.Fallback)
	if st.Terminal {
		return st, nil
	}

	st.Verification = resp.Result
	st.Memory.Set(statex.KeyVerification, resp.Result)

	log.Info().
		Str("run_id", st.RunID).
		Bool("checks_passed", resp.Result.ChecksPassed).
		Float64("face_similarity", resp.Result.FaceSimilarity).
		Msg("documents verified, routing to compliance checker")

	return st, nil
}
