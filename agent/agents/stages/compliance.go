package stages

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	toolx "github.com/verifyd/kyc-agent-pipeline/agent/tool"
)

// complianceImpl is the terminal stage. The configurable rule table
// decides; the model call only writes the rationale. When the model is
// unavailable the run still terminates, conservatively, in manual
// review.
type complianceImpl struct {
	runner compose.Runnable[map[string]any, complianceLLMOutput]
	rules  toolx.Rules
}

type complianceLLMOutput struct {
	Rationale string `json:"rationale"`
}

func newCompliance(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	rules toolx.Rules,
) (*complianceImpl, error) {
	runner, err := compileStructuredGraph[complianceLLMOutput](ctx, chatModel, systemPrompt, "compliance.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile compliance graph: %v", contractx.ErrModelInvoke, err)
	}
	return &complianceImpl{runner: runner, rules: rules}, nil
}

func (c *complianceImpl) Check(ctx context.Context, req contractx.ComplianceRequest) (contractx.ComplianceResponse, error) {
	outcome := toolx.EvaluateComplianceRules(
		c.rules,
		req.Intent,
		req.Record.Status,
		req.Verification.DocumentsPresent,
		req.Verification,
	)

	payload := map[string]any{
		"intent":        req.Intent,
		"record_status": req.Record.Status,
		"verification":  req.Verification,
		"rule_outcome":  outcome,
	}

	out, err := invokeStructured(ctx, c.runner, payload)
	if err != nil {
		return fallbackCompliance(err, outcome), nil
	}

	rationale := strings.TrimSpace(out.Rationale)
	if rationale == "" {
		rationale = defaultRationale(outcome)
	}

	return contractx.ComplianceResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageTerminal,
			Reason: rationale,
		},
		Result: contractx.ComplianceResult{
			Compliant:  outcome.Compliant,
			RiskLevel:  outcome.RiskLevel,
			Violations: outcome.Violations,
			Decision:   outcome.Decision,
			Rationale:  rationale,
		},
	}, nil
}

// fallbackCompliance terminates in manual review like every other stage
// fallback, but keeps the rule-table outcome in the rationale so a
// reviewer sees what the deterministic rules concluded.
func fallbackCompliance(cause error, outcome toolx.RuleOutcome) contractx.ComplianceResponse {
	rationale := fmt.Sprintf(
		"compliance model unavailable; rule table proposed %s (risk %s), deferring to manual review",
		outcome.Decision, outcome.RiskLevel,
	)

	return contractx.ComplianceResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageTerminal,
			Reason: rationale,
		},
		Fallback: contractx.Fallback{
			Triggered: true,
			Cause:     cause.Error(),
		},
		Result: contractx.ComplianceResult{
			Compliant:  outcome.Compliant,
			RiskLevel:  outcome.RiskLevel,
			Violations: outcome.Violations,
			Decision:   contractx.DecisionManualReview,
			Rationale:  rationale,
		},
	}
}

func defaultRationale(outcome toolx.RuleOutcome) string {
	switch outcome.Decision {
	case contractx.DecisionAutoApprove:
		return "all compliance checks passed"
	case contractx.DecisionReject:
		return fmt.Sprintf("compliance violations at %s risk: %s",
			outcome.RiskLevel, strings.Join(outcome.Violations, "; "))
	default:
		return fmt.Sprintf("risk level %s requires review", outcome.RiskLevel)
	}
}
