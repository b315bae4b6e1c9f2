package stages

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// classifierImpl is the pipeline entry stage: one model call that maps
// free-text customer input onto the intent enum.
type classifierImpl struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

type classifierLLMOutput struct {
	Intent          string  `json:"intent"`
	Confidence      float64 `json:"confidence"`
	RequiresOldData bool    `json:"requires_old_data"`
}

func newClassifier(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*classifierImpl, error) {
	runner, err := compileStructuredGraph[classifierLLMOutput](ctx, chatModel, systemPrompt, "classifier.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.ClassifyResponse, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return contractx.ClassifyResponse{}, fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"customer_id":    req.CustomerID,
		"customer_input": req.CustomerInput,
	}

	out, err := invokeStructured(ctx, c.runner, payload)
	if err != nil {
		return fallbackClassify(err), nil
	}

	intent, ok := contractx.ParseIntent(out.Intent)
	if !ok {
		return fallbackClassify(fmt.Errorf("%w: unsupported intent=%q", contractx.ErrSchemaViolation, out.Intent)), nil
	}

	return contractx.ClassifyResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageDocumentRetrieval,
			Reason: "fetch existing KYC data (if any)",
		},
		Intent:          intent,
		Confidence:      clamp01(out.Confidence),
		RequiresOldData: out.RequiresOldData,
	}, nil
}

func fallbackClassify(cause error) contractx.ClassifyResponse {
	return contractx.ClassifyResponse{
		Routing: contractx.Routing{
			Next:   contractx.StageTerminal,
			Reason: "intent classification unavailable, deferring to manual review",
		},
		Fallback: contractx.Fallback{
			Triggered: true,
			Cause:     cause.Error(),
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
