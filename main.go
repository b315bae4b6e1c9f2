package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/verifyd/kyc-agent-pipeline/agent/agents/orchestrator"
	stagesx "github.com/verifyd/kyc-agent-pipeline/agent/agents/stages"
	auditx "github.com/verifyd/kyc-agent-pipeline/agent/audit"
	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	llmx "github.com/verifyd/kyc-agent-pipeline/agent/llm"
	recordx "github.com/verifyd/kyc-agent-pipeline/agent/record"
	toolx "github.com/verifyd/kyc-agent-pipeline/agent/tool"
	configx "github.com/verifyd/kyc-agent-pipeline/pkg/config"
	_ "github.com/verifyd/kyc-agent-pipeline/pkg/logger/autoload"
	openrouterx "github.com/verifyd/kyc-agent-pipeline/pkg/openrouter"
	reviewqueuex "github.com/verifyd/kyc-agent-pipeline/pkg/reviewqueue"
)

type AppConfig struct {
	// Optional single scenario; when unset the two demo scenarios run.
	CustomerID    string `envconfig:"CUSTOMER_ID" split_words:"true"`
	CustomerInput string `envconfig:"CUSTOMER_INPUT" split_words:"true"`

	CheckModelAccess   bool `envconfig:"CHECK_MODEL_ACCESS" split_words:"true" default:"false"`
	DatabaseEnabled    bool `envconfig:"KYC_DB_ENABLED" split_words:"true" default:"false"`
	AuditEnabled       bool `envconfig:"AUDIT_ENABLED" split_words:"true" default:"false"`
	ReviewQueueEnabled bool `envconfig:"REVIEW_QUEUE_ENABLED" split_words:"true" default:"false"`
}

func main() {
	ctx := context.Background()

	// The API key is required; a missing key must fail here, before
	// any agent executes.
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		log.Fatal().Err(err).Msg("missing LLM configuration; set OPENROUTER_API_KEY and OPENROUTER_MODEL")
	}

	appCfg := configx.MustNew[AppConfig]("")
	rules := *configx.MustNew[toolx.Rules]("RULES")

	if appCfg.CheckModelAccess {
		client := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.StageIntentClassifier))
		if err := openrouterx.CheckModelAccess(ctx, client, llmCfg.Model); err != nil {
			log.Fatal().Err(err).Msg("configured model is not accessible")
		}
	}

	var store contractx.RecordStore = recordx.NewSeededStubStore()
	if appCfg.DatabaseEnabled {
		pg, err := recordx.NewPostgresStore(*configx.MustNew[recordx.PostgresConfig]("KYC_DB"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open kyc database")
		}
		defer pg.Close()
		store = pg
	}

	var auditStore contractx.AuditStore = auditx.NoopStore{}
	if appCfg.AuditEnabled {
		auditStore, err = auditx.NewUpstashRedisStore(*configx.MustNew[auditx.UpstashRedisConfig]("AUDIT"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure audit store")
		}
	}

	var notifier contractx.ReviewNotifier = reviewqueuex.NoopNotifier{}
	if appCfg.ReviewQueueEnabled {
		notifier, err = reviewqueuex.NewClient(*configx.MustNew[reviewqueuex.Config]("REVIEWQUEUE"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure review queue")
		}
	}

	registry, err := stagesx.NewRegistry(ctx, *llmCfg, store, rules)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build stage registry")
	}

	orch, err := orchestratorx.New(registry, auditStore, notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	for _, req := range scenarios(appCfg) {
		report, err := orch.Run(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("customer_id", req.CustomerID).Msg("workflow run failed")
		}
		printReport(report)
	}
}

// scenarios returns the configured single scenario or the two demo
// cases: a clean renewal and a new customer with missing documents.
func scenarios(cfg *AppConfig) []contractx.RunRequest {
	if strings.TrimSpace(cfg.CustomerID) != "" {
		return []contractx.RunRequest{{
			CustomerID:    cfg.CustomerID,
			CustomerInput: cfg.CustomerInput,
			Documents:     renewalDocuments(),
		}}
	}

	return []contractx.RunRequest{
		{
			CustomerID:    "CUST001",
			CustomerInput: "My KYC documents have expired, need renewal",
			Documents:     renewalDocuments(),
		},
		{
			CustomerID:    "CUST999",
			CustomerInput: "I want to open a new account",
			Documents: contractx.DocumentSet{
				PANCard: &contractx.DocumentData{
					Number: "XYZAB9999X",
					Name:   "New Customer",
					DOB:    "1990-03-20",
				},
				// Aadhaar and selfie deliberately missing.
			},
		},
	}
}

func renewalDocuments() contractx.DocumentSet {
	return contractx.DocumentSet{
		PANCard: &contractx.DocumentData{
			Number: "ABCDE1234F",
			Name:   "Rajesh Kumar",
			DOB:    "1985-06-15",
		},
		Aadhaar: &contractx.DocumentData{
			Number:  "1234-5678-9012",
			Name:    "Rajesh Kumar",
			DOB:     "1985-06-15",
			Address: "123 MG Road, Mumbai",
		},
		Selfie: &contractx.SelfieData{Uploaded: true},
	}
}

func printReport(report *contractx.RunReport) {
	path := make([]string, 0, len(report.ExecutionPath))
	for _, stage := range report.ExecutionPath {
		path = append(path, string(stage))
	}

	fmt.Printf("customer=%s decision=%s\n", report.CustomerID, report.Decision)
	if report.Rationale != "" {
		fmt.Printf("rationale: %s\n", report.Rationale)
	}
	fmt.Printf("execution path: %s\n", strings.Join(path, " -> "))
}
