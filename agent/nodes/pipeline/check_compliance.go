package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	statex "github.com/verifyd/kyc-agent-pipeline/agent/state"
)

func CheckCompliance(
	ctx context.Context,
	st *GraphState,
	compliance contractx.ComplianceChecker,
) (*GraphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	st.visit(contractx.StageComplianceChecker)

	resp, err := compliance.Check(ctx, contractx.ComplianceRequest{
		Intent:       st.Intent.Intent,
		Record:       st.Record,
		Verification: st.Verification,
	})
	if err != nil {
		st.terminate(contractx.DecisionManualReview, "compliance check failed, deferring to manual review")
		log.Warn().Str("run_id", st.RunID).Err(err).Msg("compliance error, terminating in manual review")
		return st, nil
	}

	st.Compliance = resp.Result
	st.Memory.Set(statex.KeyDecision, resp.Result.Decision)

	if resp.Fallback.Triggered {
		log.Warn().
			Str("run_id", st.RunID).
			Str("cause", resp.Fallback.Cause).
			Msg("compliance stage fell back, terminating in manual review")
	}
	st.terminate(resp.Result.Decision, resp.Result.Rationale)

	log.Info().
		Str("run_id", st.RunID).
		Str("decision", string(resp.Result.Decision)).
		Str("risk_level", string(resp.Result.RiskLevel)).
		Msg("compliance check complete")

	return st, nil
}
