package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	statex "github.com/verifyd/kyc-agent-pipeline/agent/state"
)

func RetrieveRecord(
	ctx context.Context,
	st *GraphState,
	retriever contractx.DocumentRetriever,
) (*GraphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	st.visit(contractx.StageDocumentRetrieval)

	resp, err := retriever.Retrieve(ctx, contractx.RetrieveRequest{
		CustomerID: st.Input.CustomerID,
		Intent:     st.Intent.Intent,
	})
	if err != nil {
		st.terminate(contractx.DecisionManualReview, "document retrieval failed, deferring to manual review")
		log.Warn().Str("run_id", st.RunID).Err(err).Msg("retriever error, terminating in manual review")
		return st, nil
	}

	applyRouting(st, contractx.StageDocumentRetrieval, resp.Routing, resp.Fallback)
	if st.Terminal {
		return st, nil
	}

	st.Record = resp.Record
	st.Memory.Set(statex.KeyKYCRecord, resp.Record)

	log.Info().
		Str("run_id", st.RunID).
		Str("record_status", string(resp.Record.Status)).
		Msg("record retrieved, routing to document verifier")

	return st, nil
}
