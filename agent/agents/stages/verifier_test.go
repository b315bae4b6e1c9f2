package stages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	toolx "github.com/verifyd/kyc-agent-pipeline/agent/tool"
)

func renewalDocumentSet() contractx.DocumentSet {
	return contractx.DocumentSet{
		PANCard: &contractx.DocumentData{
			Number: "ABCDE1234F",
			Name:   "Rajesh Kumar",
			DOB:    "1985-06-15",
		},
		Aadhaar: &contractx.DocumentData{
			Number: "1234-5678-9012",
			Name:   "Rajesh Kumar",
			DOB:    "1985-06-15",
		},
		Selfie: &contractx.SelfieData{Uploaded: true},
	}
}

func TestVerifierCleanDocuments(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"all_checks_passed":true,"issues":[],"critical_failure":false}`},
		},
	}

	verifier, err := newVerifier(context.Background(), fake, "verifier prompt", toolx.DefaultRules())
	if err != nil {
		t.Fatalf("newVerifier() error = %v", err)
	}

	out, err := verifier.Verify(context.Background(), contractx.VerifyRequest{
		Intent:    contractx.IntentRenewal,
		Record:    contractx.KYCRecord{CustomerID: "CUST001", Status: contractx.RecordExpired},
		Documents: renewalDocumentSet(),
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if !out.Result.ChecksPassed {
		t.Fatalf("checks failed on clean documents: %v", out.Result.Issues)
	}
	if out.Result.FaceSimilarity != 0.87 {
		t.Fatalf("face similarity = %v, want tool score 0.87", out.Result.FaceSimilarity)
	}
	if !out.Result.NameConsistent || out.Result.NameMatchScore != 1.0 {
		t.Fatalf("name consistency = %v score %v", out.Result.NameConsistent, out.Result.NameMatchScore)
	}
	if !out.Result.DocumentsPresent.PAN || !out.Result.DocumentsPresent.Aadhaar || !out.Result.DocumentsPresent.Selfie {
		t.Fatalf("documents present = %+v", out.Result.DocumentsPresent)
	}
	if out.Routing.Next != contractx.StageComplianceChecker {
		t.Fatalf("next = %s, want %s", out.Routing.Next, contractx.StageComplianceChecker)
	}
}

func TestVerifierToolIssuesOverrideModelVerdict(t *testing.T) {
	t.Parallel()

	// Model claims everything passed, but the PAN number fails the
	// deterministic format check. Tool evidence wins.
	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"all_checks_passed":true,"issues":[],"critical_failure":false}`},
		},
	}

	verifier, err := newVerifier(context.Background(), fake, "verifier prompt", toolx.DefaultRules())
	if err != nil {
		t.Fatalf("newVerifier() error = %v", err)
	}

	docs := renewalDocumentSet()
	docs.PANCard.Number = "BAD"

	out, err := verifier.Verify(context.Background(), contractx.VerifyRequest{
		Intent:    contractx.IntentRenewal,
		Documents: docs,
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if out.Result.ChecksPassed {
		t.Fatal("tool-detected issue did not fail the checks")
	}
	if !containsIssue(out.Result.Issues, "invalid PAN format") {
		t.Fatalf("issues = %v, want PAN format issue", out.Result.Issues)
	}
}

func TestVerifierMergesAndDeduplicatesIssues(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"all_checks_passed":false,"issues":["invalid Aadhaar format","DOB mismatch across documents"],"critical_failure":false}`},
		},
	}

	verifier, err := newVerifier(context.Background(), fake, "verifier prompt", toolx.DefaultRules())
	if err != nil {
		t.Fatalf("newVerifier() error = %v", err)
	}

	docs := renewalDocumentSet()
	docs.Aadhaar.Number = "1234"

	out, err := verifier.Verify(context.Background(), contractx.VerifyRequest{
		Intent:    contractx.IntentRenewal,
		Documents: docs,
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	count := 0
	for _, issue := range out.Result.Issues {
		if issue == "invalid Aadhaar format" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("duplicate issue appears %d times in %v", count, out.Result.Issues)
	}
	if !containsIssue(out.Result.Issues, "DOB mismatch") {
		t.Fatalf("model issue lost: %v", out.Result.Issues)
	}
}

func TestVerifierMissingSelfieScoresZero(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"all_checks_passed":true,"issues":[],"critical_failure":false}`},
		},
	}

	verifier, err := newVerifier(context.Background(), fake, "verifier prompt", toolx.DefaultRules())
	if err != nil {
		t.Fatalf("newVerifier() error = %v", err)
	}

	docs := renewalDocumentSet()
	docs.Selfie = nil

	out, err := verifier.Verify(context.Background(), contractx.VerifyRequest{
		Intent:    contractx.IntentNew,
		Documents: docs,
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if out.Result.FaceSimilarity != 0 {
		t.Fatalf("face similarity = %v, want 0 without a selfie", out.Result.FaceSimilarity)
	}
	// Low score without a selfie is not a critical biometric failure.
	if out.Result.CriticalFailure {
		t.Fatal("missing selfie marked as critical failure")
	}
}

func TestVerifierCarriesModelCriticalFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"all_checks_passed":true,"issues":["forged document suspected"],"critical_failure":true}`},
		},
	}

	verifier, err := newVerifier(context.Background(), fake, "verifier prompt", toolx.DefaultRules())
	if err != nil {
		t.Fatalf("newVerifier() error = %v", err)
	}

	out, err := verifier.Verify(context.Background(), contractx.VerifyRequest{
		Intent:    contractx.IntentRenewal,
		Documents: renewalDocumentSet(),
	})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if !out.Result.CriticalFailure {
		t.Fatal("model critical failure lost in merge")
	}
	if out.Result.ChecksPassed {
		t.Fatal("critical failure left checks passed")
	}
}

func TestVerifierModelFailureFallsBack(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("model unavailable")}

	verifier, err := newVerifier(context.Background(), fake, "verifier prompt", toolx.DefaultRules())
	if err != nil {
		t.Fatalf("newVerifier() error = %v", err)
	}

	out, err := verifier.Verify(context.Background(), contractx.VerifyRequest{
		Intent:    contractx.IntentRenewal,
		Documents: renewalDocumentSet(),
	})
	if err != nil {
		t.Fatalf("Verify() returned error instead of fallback: %v", err)
	}

	if !out.Fallback.Triggered {
		t.Fatal("fallback not triggered on model failure")
	}
	if out.Routing.Next != contractx.StageTerminal {
		t.Fatalf("next = %s, want terminal", out.Routing.Next)
	}
}

func containsIssue(issues []string, substr string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}
