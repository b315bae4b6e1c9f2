package pipelinenode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// PersistReport writes the completed report to the audit store.
// Audit failures are logged, never fatal to the run.
func PersistReport(
	ctx context.Context,
	st *GraphState,
	store contractx.AuditStore,
) (*GraphState, error) {
	if st == nil || st.Report == nil {
		return nil, fmt.Errorf("%w: run report is missing", contractx.ErrValidation)
	}

	if err := store.Save(ctx, st.Report); err != nil {
		log.Warn().Str("run_id", st.RunID).Err(err).Msg("failed to persist run report")
	}
	return st, nil
}

// NotifyReview escalates manual-review outcomes to the review queue.
// Queue failures are logged, never fatal to the run.
func NotifyReview(
	ctx context.Context,
	st *GraphState,
	notifier contractx.ReviewNotifier,
) (*GraphState, error) {
	if st == nil || st.Report == nil {
		return nil, fmt.Errorf("%w: run report is missing", contractx.ErrValidation)
	}

	if st.Report.Decision != contractx.DecisionManualReview {
		return st, nil
	}
	if err := notifier.NotifyManualReview(ctx, st.Report); err != nil {
		log.Warn().Str("run_id", st.RunID).Err(err).Msg("failed to publish manual-review case")
	}
	return st, nil
}
