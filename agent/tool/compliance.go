package tool

import (
	"fmt"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// Rules holds the compliance thresholds. The exact RBI-style values are
// configuration supplied by the operator, not constants inferred from
// examples; the defaults mirror the documented illustrative table.
type Rules struct {
	FaceMatchThreshold  float64 `envconfig:"FACE_MATCH_THRESHOLD" split_words:"true" default:"0.75"`
	FaceRejectThreshold float64 `envconfig:"FACE_REJECT_THRESHOLD" split_words:"true" default:"0.60"`
	RequireSelfieForNew bool    `envconfig:"REQUIRE_SELFIE_FOR_NEW" split_words:"true" default:"true"`
}

func DefaultRules() Rules {
	return Rules{
		FaceMatchThreshold:  0.75,
		FaceRejectThreshold: 0.60,
		RequireSelfieForNew: true,
	}
}

type RuleOutcome struct {
	Compliant  bool                `json:"compliant"`
	RiskLevel  contractx.RiskLevel `json:"risk_level"`
	Violations []string            `json:"violations,omitempty"`
	Decision   contractx.Decision  `json:"final_decision"`
}

// EvaluateComplianceRules applies the rule table: document requirements
// per intent, then face-similarity thresholds. A clean pass
// auto-approves; violations at HIGH risk or a critical verification
// failure reject; everything ambiguous goes to manual review.
func EvaluateComplianceRules(
	rules Rules,
	intent contractx.Intent,
	status contractx.RecordStatus,
	present contractx.DocumentsPresent,
	verification contractx.VerificationResult,
) RuleOutcome {
	var violations []string
	risk := contractx.RiskLow

	switch intent {
	case contractx.IntentNew:
		if !present.PAN {
			violations = append(violations, "PAN card required for NEW KYC")
		}
		if !present.Aadhaar {
			violations = append(violations, "Aadhaar required for NEW KYC")
		}
		if rules.RequireSelfieForNew && !present.Selfie {
			violations = append(violations, "selfie required for NEW KYC")
		}
	case contractx.IntentRenewal:
		if !present.PAN {
			violations = append(violations, "PAN card required for RENEWAL")
		}
		if !present.Aadhaar {
			violations = append(violations, "Aadhaar required for RENEWAL")
		}
	}

	if verification.FaceSimilarity < rules.FaceMatchThreshold {
		violations = append(violations, fmt.Sprintf(
			"face similarity %.2f below threshold %.2f",
			verification.FaceSimilarity, rules.FaceMatchThreshold))
		risk = contractx.RiskMedium
	}
	if verification.FaceSimilarity < rules.FaceRejectThreshold {
		risk = contractx.RiskHigh
	}

	if verification.CriticalFailure {
		violations = append(violations, "critical document verification failure")
		risk = contractx.RiskHigh
	}

	if status == contractx.RecordExpired && !verification.ChecksPassed {
		violations = append(violations, "expired record with failed verification checks")
		risk = contractx.RiskHigh
	}

	if !verification.ChecksPassed && len(violations) == 0 {
		violations = append(violations, "document verification checks did not pass")
		if risk == contractx.RiskLow {
			risk = contractx.RiskMedium
		}
	}

	outcome := RuleOutcome{
		Compliant:  len(violations) == 0,
		RiskLevel:  risk,
		Violations: violations,
	}

	switch {
	case outcome.Compliant:
		outcome.Decision = contractx.DecisionAutoApprove
	case risk == contractx.RiskHigh:
		outcome.Decision = contractx.DecisionReject
	default:
		outcome.Decision = contractx.DecisionManualReview
	}

	return outcome
}
