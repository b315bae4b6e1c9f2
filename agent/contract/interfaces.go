package contract

import "context"

type IntentClassifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (ClassifyResponse, error)
}

type DocumentRetriever interface {
	Retrieve(ctx context.Context, req RetrieveRequest) (RetrieveResponse, error)
}

type DocumentVerifier interface {
	Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error)
}

type ComplianceChecker interface {
	Check(ctx context.Context, req ComplianceRequest) (ComplianceResponse, error)
}

type Registry interface {
	Classifier() IntentClassifier
	Retriever() DocumentRetriever
	Verifier() DocumentVerifier
	Compliance() ComplianceChecker
}

// RecordStore looks up existing KYC records by customer identifier.
// Implementations return ErrRecordNotFound for unknown customers.
type RecordStore interface {
	Lookup(ctx context.Context, customerID string) (KYCRecord, error)
}

// AuditStore persists completed run reports.
type AuditStore interface {
	Save(ctx context.Context, report *RunReport) error
	Load(ctx context.Context, runID string) (*RunReport, error)
	Delete(ctx context.Context, runID string) error
}

// ReviewNotifier escalates manual-review decisions to an external queue.
type ReviewNotifier interface {
	NotifyManualReview(ctx context.Context, report *RunReport) error
}
