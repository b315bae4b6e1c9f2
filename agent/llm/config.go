package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
	openrouterx "github.com/verifyd/kyc-agent-pipeline/pkg/openrouter"
)

// Config maps one OpenRouter account onto the model-backed pipeline
// stages, with optional per-stage model and temperature overrides.
// The retrieval stage performs no model call and has no entry here.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ClassifierModel        string  `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	VerifierModel          string  `envconfig:"VERIFIER_MODEL" split_words:"true"`
	ComplianceModel        string  `envconfig:"COMPLIANCE_MODEL" split_words:"true"`
	ClassifierTemperature  float32 `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	VerifierTemperature    float32 `envconfig:"VERIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	ComplianceTemperature  float32 `envconfig:"COMPLIANCE_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the effective provider config for a stage.
func (c Config) OpenRouterFor(stage contractx.StageID) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch stage {
	case contractx.StageIntentClassifier:
		if v := strings.TrimSpace(c.ClassifierModel); v != "" {
			modelName = v
		}
		if c.ClassifierTemperature >= 0 {
			temp = c.ClassifierTemperature
		}
	case contractx.StageDocumentVerifier:
		if v := strings.TrimSpace(c.VerifierModel); v != "" {
			modelName = v
		}
		if c.VerifierTemperature >= 0 {
			temp = c.VerifierTemperature
		}
	case contractx.StageComplianceChecker:
		if v := strings.TrimSpace(c.ComplianceModel); v != "" {
			modelName = v
		}
		if c.ComplianceTemperature >= 0 {
			temp = c.ComplianceTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
