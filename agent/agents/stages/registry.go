package stages

import (
	"context"
	"fmt"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	llmx "github.com/verifyd/kyc-agent-pipeline/agent/llm"
	promptx "github.com/verifyd/kyc-agent-pipeline/agent/prompt"
	toolx "github.com/verifyd/kyc-agent-pipeline/agent/tool"
)

type registryImpl struct {
	classifier contractx.IntentClassifier
	retriever  contractx.DocumentRetriever
	verifier   contractx.DocumentVerifier
	compliance contractx.ComplianceChecker
}

func (r *registryImpl) Classifier() contractx.IntentClassifier { return r.classifier }
func (r *registryImpl) Retriever() contractx.DocumentRetriever { return r.retriever }
func (r *registryImpl) Verifier() contractx.DocumentVerifier   { return r.verifier }
func (r *registryImpl) Compliance() contractx.ComplianceChecker {
	return r.compliance
}

// NewRegistry builds the four stage agents: one chat model per
// model-backed stage, the store-backed retriever in between.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	store contractx.RecordStore,
	rules toolx.Rules,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	if prompts.Classifier == "" || prompts.Verifier == "" || prompts.Compliance == "" {
		return nil, contractx.ErrPromptMissing
	}

	classifierCfg := cfg.OpenRouterFor(contractx.StageIntentClassifier)
	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	verifierCfg := cfg.OpenRouterFor(contractx.StageDocumentVerifier)
	verifierModel, err := verifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create verifier model: %v", contractx.ErrModelInvoke, err)
	}
	complianceCfg := cfg.OpenRouterFor(contractx.StageComplianceChecker)
	complianceModel, err := complianceCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create compliance model: %v", contractx.ErrModelInvoke, err)
	}

	classifier, err := newClassifier(ctx, classifierModel, prompts.Classifier)
	if err != nil {
		return nil, err
	}
	retriever, err := NewRetriever(store)
	if err != nil {
		return nil, err
	}
	verifier, err := newVerifier(ctx, verifierModel, prompts.Verifier, rules)
	if err != nil {
		return nil, err
	}
	compliance, err := newCompliance(ctx, complianceModel, prompts.Compliance, rules)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		classifier: classifier,
		retriever:  retriever,
		verifier:   verifier,
		compliance: compliance,
	}, nil
}
