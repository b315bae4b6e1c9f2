package stages

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	toolx "github.com/verifyd/kyc-agent-pipeline/agent/tool"
)

// Face similarity below this is treated as a critical failure no matter
// what the model concluded.
const criticalFaceSimilarity = 0.3

// verifierImpl runs the deterministic document tools, then one model
// call to merge tool evidence into a single verdict. Tool-produced
// scores are authoritative; the model fills in what tools cannot see.
type verifierImpl struct {
	runner compose.Runnable[map[string]any, verifierLLMOutput]
	rules  toolx.Rules
}

type verifierLLMOutput struct {
	AllChecksPassed bool     `json:"all_checks_passed"`
	Issues          []string `json:"issues,omitempty"`
	CriticalFailure bool     `json:"critical_failure"`
}

type verifierToolResults struct {
	Extractions     []toolx.ExtractionResult    `json:"extractions,omitempty"`
	Aadhaar         *toolx.AadhaarCheckResult   `json:"aadhaar_check,omitempty"`
	NameConsistency toolx.NameConsistencyResult `json:"name_consistency"`
	Face            toolx.FaceSimilarityResult  `json:"face_similarity"`
	Present         contractx.DocumentsPresent  `json:"documents_present"`
}

func newVerifier(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	rules toolx.Rules,
) (*verifierImpl, error) {
	runner, err := compileStructuredGraph[verifierLLMOutput](ctx, chatModel, systemPrompt, "verifier.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile verifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &verifierImpl{runner: runner, rules: rules}, nil
}

func (v *verifierImpl) Verify(ctx context.Context, req contractx.VerifyRequest) (contractx.VerifyResponse, error) {
	tools := v.runTools(req.Documents)

	payload := map[string]any{
		"intent":       req.Intent,
		"record":       req.Record,
		"documents":    req.Documents,
		"tool_results": tools,
	}

	out, err := invokeStructured(ctx, v.runner, payload)
	if err != nil {
		return fallbackVerify(err), nil
	}

	result := contractx.VerificationResult{
		ChecksPassed:     out.AllChecksPassed,
		FaceSimilarity:   tools.Face.Score,
		NameConsistent:   tools.NameConsistency.Consistent,
		NameMatchScore:   tools.NameConsistency.MatchScore,
		DocumentsPresent: tools.Present,
		Issues:           mergeIssues(tools, out.Issues),
		CriticalFailure:  out.CriticalFailure,
	}

	if tools.Face.Score < criticalFaceSimilarity && tools.Present.Selfie {
		result.CriticalFailure = true
	}
	if result.CriticalFailure || len(result.Issues) > 0 {
		result.ChecksPassed = false
	}

	return contractx.VerifyResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageComplianceChecker,
			Reason: "apply compliance rules",
		},
		Result: result,
	}, nil
}

func (v *verifierImpl) runTools(docs contractx.DocumentSet) verifierToolResults {
	tools := verifierToolResults{
		Present: contractx.DocumentsPresent{
			PAN:     docs.PANCard != nil,
			Aadhaar: docs.Aadhaar != nil,
			Selfie:  docs.Selfie != nil,
		},
	}

	names := map[string]string{}
	if docs.PANCard != nil {
		tools.Extractions = append(tools.Extractions, toolx.ExtractDocumentData("pan_card", *docs.PANCard))
		names["pan_name"] = docs.PANCard.Name
	}
	if docs.Aadhaar != nil {
		tools.Extractions = append(tools.Extractions, toolx.ExtractDocumentData("aadhaar", *docs.Aadhaar))
		check := toolx.VerifyAadhaarNumber(docs.Aadhaar.Number)
		tools.Aadhaar = &check
		names["aadhaar_name"] = docs.Aadhaar.Name
	}

	if len(names) > 0 {
		tools.NameConsistency = toolx.CheckNameConsistency(names)
	}

	if docs.Selfie != nil {
		// The stored ID photo is assumed available whenever a record
		// holds document metadata; the comparison itself is a stub.
		tools.Face = toolx.CompareFaceSimilarity(docs.Selfie, true, v.rules.FaceMatchThreshold)
	}

	return tools
}

func mergeIssues(tools verifierToolResults, modelIssues []string) []string {
	var issues []string
	for _, ex := range tools.Extractions {
		issues = append(issues, ex.Issues...)
	}
	if tools.Aadhaar != nil && tools.Aadhaar.Issue != "" {
		issues = append(issues, tools.Aadhaar.Issue)
	}
	issues = append(issues, tools.NameConsistency.Issues...)

	seen := make(map[string]struct{}, len(issues)+len(modelIssues))
	out := make([]string, 0, len(issues)+len(modelIssues))
	for _, issue := range append(issues, modelIssues...) {
		if issue == "" {
			continue
		}
		if _, dup := seen[issue]; dup {
			continue
		}
		seen[issue] = struct{}{}
		out = append(out, issue)
	}
	return out
}

func fallbackVerify(cause error) contractx.VerifyResponse {
	return contractx.VerifyResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageTerminal,
			Reason: "document verification unavailable, deferring to manual review",
		},
		Fallback: contractx.Fallback{
			Triggered: true,
			Cause:     cause.Error(),
		},
	}
}
