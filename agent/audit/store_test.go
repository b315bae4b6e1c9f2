package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

func sampleReport(runID string) *contractx.RunReport {
	return &contractx.RunReport{
		RunID:      runID,
		CustomerID: "CUST001",
		Decision:   contractx.DecisionAutoApprove,
		Rationale:  "all compliance checks passed",
		ExecutionPath: []contractx.StageID{
			contractx.StageIntentClassifier,
			contractx.StageDocumentRetrieval,
			contractx.StageDocumentVerifier,
			contractx.StageComplianceChecker,
		},
		CompletedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpstashRedisStoreRedisKeyUsesPrefix(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{keyPrefix: defaultKeyPrefix}
	got, err := store.redisKey("run-1")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "kyc:run:run-1" {
		t.Fatalf("redisKey() = %q, want %q", got, "kyc:run:run-1")
	}
}

func TestUpstashRedisStoreRedisKeyEmptyRunID(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	_, err := store.redisKey("   ")
	if !errors.Is(err, ErrInvalidRunID) {
		t.Fatalf("redisKey() error = %v, want ErrInvalidRunID", err)
	}
}

func TestUpstashRedisStoreSaveSetsReportKey(t *testing.T) {
	t.Parallel()

	const wantKey = "kyc:run:run-1"
	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(0),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Save(context.Background(), sampleReport("run-1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 3 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "SET" {
		t.Fatalf("command[0] = %v, want SET", gotCommand[0])
	}
	if gotCommand[1] != wantKey {
		t.Fatalf("command[1] = %v, want %s", gotCommand[1], wantKey)
	}
}

func TestUpstashRedisStoreSaveAppendsTTL(t *testing.T) {
	t.Parallel()

	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(90*time.Second),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Save(context.Background(), sampleReport("run-2")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 5 || gotCommand[3] != "EX" {
		t.Fatalf("command without TTL clause: %#v", gotCommand)
	}
	if got, ok := gotCommand[4].(float64); !ok || got != 90 {
		t.Fatalf("ttl seconds = %v, want 90", gotCommand[4])
	}
}

func TestUpstashRedisStoreSaveNilReport(t *testing.T) {
	t.Parallel()

	store, err := NewUpstashRedisStore(UpstashRedisConfig{
		URL:   "http://localhost:1",
		Token: "token",
	})
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Save(context.Background(), nil); !errors.Is(err, ErrNilReport) {
		t.Fatalf("Save(nil) error = %v, want ErrNilReport", err)
	}
}

func TestUpstashRedisStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	seed := sampleReport("run-3")
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal encoded seed: %v", err)
	}

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	report, err := store.Load(context.Background(), "run-3")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if gotCommand[0] != "GET" || gotCommand[1] != "kyc:run:run-3" {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if report.RunID != "run-3" || report.Decision != contractx.DecisionAutoApprove {
		t.Fatalf("loaded report = %+v", report)
	}
	if len(report.ExecutionPath) != 4 {
		t.Fatalf("execution path = %v", report.ExecutionPath)
	}
}

func TestUpstashRedisStoreLoadMissingReport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("Load() error = %v, want ErrReportNotFound", err)
	}
}

func TestUpstashRedisStoreSurfacesRedisError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGPASS invalid token"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Save(context.Background(), sampleReport("run-4")); err == nil {
		t.Fatal("redis error response did not surface")
	}
}

func TestNewUpstashRedisStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashRedisStore(UpstashRedisConfig{Token: "token"}); err == nil {
		t.Fatal("missing url accepted")
	}
	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "http://localhost:1"}); err == nil {
		t.Fatal("missing token accepted")
	}
}
