package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	nodex "github.com/verifyd/kyc-agent-pipeline/agent/nodes/pipeline"
)

var ErrInvalidRequest = nodex.ErrInvalidRequest

// Orchestrator executes the fixed four-stage chain for one customer
// scenario at a time. Instances are reusable: all per-run state lives
// in the graph, so concurrent runs for different customers are safe.
type Orchestrator struct {
	registry contractx.Registry
	audit    contractx.AuditStore
	notifier contractx.ReviewNotifier

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now      func() time.Time
	newRunID func() string
}

func New(
	registry contractx.Registry,
	audit contractx.AuditStore,
	notifier contractx.ReviewNotifier,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("stage registry is required")
	}
	if audit == nil {
		audit = noopAuditStore{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	o := &Orchestrator{
		registry: registry,
		audit:    audit,
		notifier: notifier,
		now:      time.Now,
		newRunID: uuid.NewString,
	}

	graphRunner, err := o.compilePipelineGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Run executes one workflow to completion and returns the terminal
// report: execution path, memory snapshot, and exactly one decision.
func (o *Orchestrator) Run(ctx context.Context, req contractx.RunRequest) (*contractx.RunReport, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		CustomerID:    req.CustomerID,
		CustomerInput: req.CustomerInput,
		Documents:     req.Documents,
	})
	if err != nil {
		return nil, err
	}
	return out.Report, nil
}

type noopAuditStore struct{}

func (noopAuditStore) Save(context.Context, *contractx.RunReport) error { return nil }

func (noopAuditStore) Load(context.Context, string) (*contractx.RunReport, error) {
	return nil, errors.New("audit store is not configured")
}

func (noopAuditStore) Delete(context.Context, string) error { return nil }

type noopNotifier struct{}

func (noopNotifier) NotifyManualReview(context.Context, *contractx.RunReport) error {
	return nil
}
