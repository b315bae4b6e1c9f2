package contract

import (
	"strings"
	"time"
)

// StageID is the closed set of pipeline stages. Routing signals are
// constrained to this enumeration plus StageTerminal, so an invalid
// successor cannot be expressed.
type StageID string

const (
	StageIntentClassifier  StageID = "intent_classifier"
	StageDocumentRetrieval StageID = "document_retrieval"
	StageDocumentVerifier  StageID = "document_verifier"
	StageComplianceChecker StageID = "compliance_checker"
	StageTerminal          StageID = "terminal"
)

// CanonicalNext returns the fixed successor of a stage in the chain.
// The compliance checker and terminal both map to StageTerminal.
func (s StageID) CanonicalNext() StageID {
	switch s {
	case StageIntentClassifier:
		return StageDocumentRetrieval
	case StageDocumentRetrieval:
		return StageDocumentVerifier
	case StageDocumentVerifier:
		return StageComplianceChecker
	default:
		return StageTerminal
	}
}

func (s StageID) Valid() bool {
	switch s {
	case StageIntentClassifier, StageDocumentRetrieval, StageDocumentVerifier,
		StageComplianceChecker, StageTerminal:
		return true
	default:
		return false
	}
}

type Intent string

const (
	IntentNew     Intent = "NEW"
	IntentRenewal Intent = "RENEWAL"
	IntentUpdate  Intent = "UPDATE"
)

// ParseIntent normalizes a model-produced intent label.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(strings.ToUpper(strings.TrimSpace(raw))) {
	case IntentNew:
		return IntentNew, true
	case IntentRenewal:
		return IntentRenewal, true
	case IntentUpdate:
		return IntentUpdate, true
	default:
		return "", false
	}
}

type RecordStatus string

const (
	RecordNotFound RecordStatus = "NOT_FOUND"
	RecordActive   RecordStatus = "ACTIVE"
	RecordExpired  RecordStatus = "EXPIRED"
)

type Decision string

const (
	DecisionAutoApprove  Decision = "AUTO_APPROVE"
	DecisionManualReview Decision = "MANUAL_REVIEW"
	DecisionReject       Decision = "REJECT"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// KYCRecord is the stored customer profile. Immutable once fetched;
// a NOT_FOUND status is a valid business state, not an error.
type KYCRecord struct {
	CustomerID   string          `json:"customer_id"`
	Status       RecordStatus    `json:"status"`
	CustomerName string          `json:"customer_name,omitempty"`
	DOB          string          `json:"dob,omitempty"`
	Documents    RecordDocuments `json:"documents,omitempty"`
}

type RecordDocuments struct {
	PAN          string `json:"pan,omitempty"`
	Aadhaar      string `json:"aadhaar,omitempty"`
	LastVerified string `json:"last_verified,omitempty"`
}

// DocumentSet is what the customer submits with the request.
type DocumentSet struct {
	PANCard *DocumentData `json:"pan_card,omitempty"`
	Aadhaar *DocumentData `json:"aadhaar,omitempty"`
	Selfie  *SelfieData   `json:"selfie,omitempty"`
}

type DocumentData struct {
	Number  string `json:"number"`
	Name    string `json:"name"`
	DOB     string `json:"dob,omitempty"`
	Address string `json:"address,omitempty"`
}

type SelfieData struct {
	Uploaded bool `json:"uploaded"`
}

// DocumentsPresent flags which required documents arrived with the
// submission, as observed by the verifier.
type DocumentsPresent struct {
	PAN     bool `json:"pan"`
	Aadhaar bool `json:"aadhaar"`
	Selfie  bool `json:"selfie"`
}

type VerificationResult struct {
	ChecksPassed     bool             `json:"all_checks_passed"`
	FaceSimilarity   float64          `json:"face_similarity"`
	NameConsistent   bool             `json:"name_consistent"`
	NameMatchScore   float64          `json:"name_match_score"`
	DocumentsPresent DocumentsPresent `json:"documents_present"`
	Issues           []string         `json:"issues,omitempty"`
	CriticalFailure  bool             `json:"critical_failure"`
}

type ComplianceResult struct {
	Compliant  bool      `json:"compliant"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Violations []string  `json:"violations,omitempty"`
	Decision   Decision  `json:"final_decision"`
	Rationale  string    `json:"rationale,omitempty"`
}

// Routing is embedded in every stage response. Next must name the
// canonical successor or StageTerminal; the orchestrator enforces this.
type Routing struct {
	Next   StageID `json:"next_stage"`
	Reason string  `json:"reason,omitempty"`
}

// Fallback marks a conservative default response produced when a stage
// could not obtain a usable model answer. The orchestrator terminates
// such runs with DecisionManualReview.
type Fallback struct {
	Triggered bool   `json:"fallback,omitempty"`
	Cause     string `json:"fallback_cause,omitempty"`
}

type ClassifyRequest struct {
	CustomerID    string `json:"customer_id"`
	CustomerInput string `json:"customer_input"`
}

type ClassifyResponse struct {
	Routing
	Fallback
	Intent          Intent  `json:"intent"`
	Confidence      float64 `json:"confidence"`
	RequiresOldData bool    `json:"requires_old_data"`
}

type RetrieveRequest struct {
	CustomerID string `json:"customer_id"`
	Intent     Intent `json:"intent"`
}

type RetrieveResponse struct {
	Routing
	Fallback
	Record KYCRecord `json:"record"`
}

type VerifyRequest struct {
	Intent    Intent      `json:"intent"`
	Record    KYCRecord   `json:"record"`
	Documents DocumentSet `json:"documents"`
}

type VerifyResponse struct {
	Routing
	Fallback
	Result VerificationResult `json:"result"`
}

type ComplianceRequest struct {
	Intent       Intent             `json:"intent"`
	Record       KYCRecord          `json:"record"`
	Verification VerificationResult `json:"verification"`
}

type ComplianceResponse struct {
	Routing
	Fallback
	Result ComplianceResult `json:"result"`
}

// RunRequest is one customer scenario submitted to the orchestrator.
type RunRequest struct {
	CustomerID    string      `json:"customer_id"`
	CustomerInput string      `json:"customer_input"`
	Documents     DocumentSet `json:"documents"`
}

// RunReport is the terminal value of a run: exactly one decision plus
// the recorded execution path and the per-run memory snapshot.
type RunReport struct {
	RunID         string             `json:"run_id"`
	CustomerID    string             `json:"customer_id"`
	Decision      Decision           `json:"decision"`
	Rationale     string             `json:"rationale,omitempty"`
	ExecutionPath []StageID          `json:"execution_path"`
	MemoryKeys    []string           `json:"memory_keys"`
	Memory        map[string]any     `json:"memory"`
	Verification  VerificationResult `json:"verification"`
	Compliance    ComplianceResult   `json:"compliance"`
	CompletedAt   time.Time          `json:"completed_at"`
}
