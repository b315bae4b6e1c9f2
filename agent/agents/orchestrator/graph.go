package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	nodex "github.com/verifyd/kyc-agent-pipeline/agent/nodes/pipeline"
)

// compilePipelineGraph wires the fixed chain. After each stage that can
// fall back, a branch either advances to the canonical successor or
// short-circuits to report building, so a terminated run skips the
// remaining stages.
func (o *Orchestrator) compilePipelineGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.newRunID(), o.now())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ClassifyIntent(ctx, in, o.registry.Classifier())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	if err := graph.AddLambdaNode("retrieve_record",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RetrieveRecord(ctx, in, o.registry.Retriever())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node retrieve_record: %w", err)
	}

	if err := graph.AddLambdaNode("verify_documents",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.VerifyDocuments(ctx, in, o.registry.Verifier())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node verify_documents: %w", err)
	}

	if err := graph.AddLambdaNode("check_compliance",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CheckCompliance(ctx, in, o.registry.Compliance())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_compliance: %w", err)
	}

	if err := graph.AddLambdaNode("build_report",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BuildReport(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_report: %w", err)
	}

	if err := graph.AddLambdaNode("persist_report",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PersistReport(ctx, in, o.audit)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_report: %w", err)
	}

	if err := graph.AddLambdaNode("notify_review",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.NotifyReview(ctx, in, o.notifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node notify_review: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_report",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_report: %w", err)
	}

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate: %w", err)
	}
	if err := graph.AddEdge("validate_request", "classify_intent"); err != nil {
		return nil, fmt.Errorf("add edge validate->classify: %w", err)
	}

	branches := []struct {
		from string
		next string
	}{
		{"classify_intent", "retrieve_record"},
		{"retrieve_record", "verify_documents"},
		{"verify_documents", "check_compliance"},
	}
	for _, b := range branches {
		next := b.next
		branch := compose.NewGraphBranch(
			func(ctx context.Context, in *nodex.GraphState) (string, error) {
				if in == nil {
					return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
				}
				if in.Terminal {
					return "build_report", nil
				}
				return next, nil
			},
			map[string]bool{
				next:           true,
				"build_report": true,
			},
		)
		if err := graph.AddBranch(b.from, branch); err != nil {
			return nil, fmt.Errorf("add branch %s: %w", b.from, err)
		}
	}

	tail := [][2]string{
		{"check_compliance", "build_report"},
		{"build_report", "persist_report"},
		{"persist_report", "notify_review"},
		{"notify_review", "finalize_report"},
		{"finalize_report", compose.END},
	}
	for _, edge := range tail {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("kyc.pipeline"))
	if err != nil {
		return nil, fmt.Errorf("compile pipeline graph: %w", err)
	}
	return runner, nil
}
