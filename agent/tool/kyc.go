package tool

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	contractx "github.com/verifyd/kyc-agent-pipeline/agent/contract"
)

// Document tools. These are deterministic stand-ins for real OCR,
// biometric, and registry integrations; each is a pure function over
// its inputs so runs with fixed inputs are reproducible.

const (
	panNumberLength    = 10
	aadhaarDigitLength = 12
)

var aadhaarDigitsPattern = regexp.MustCompile(`^\d{12}$`)

type ExtractionResult struct {
	DocumentType string   `json:"document_type"`
	Number       string   `json:"number"`
	Name         string   `json:"name"`
	DOB          string   `json:"dob,omitempty"`
	Address      string   `json:"address,omitempty"`
	ValidFormat  bool     `json:"is_valid_format"`
	Confidence   float64  `json:"confidence"`
	Issues       []string `json:"issues,omitempty"`
}

// ExtractDocumentData simulates OCR extraction plus format validation.
func ExtractDocumentData(documentType string, doc contractx.DocumentData) ExtractionResult {
	out := ExtractionResult{
		DocumentType: documentType,
		Number:       strings.TrimSpace(doc.Number),
		Name:         strings.TrimSpace(doc.Name),
		DOB:          strings.TrimSpace(doc.DOB),
		Address:      strings.TrimSpace(doc.Address),
		ValidFormat:  true,
		Confidence:   0.95,
	}

	if documentType == "pan_card" && len(out.Number) != panNumberLength {
		out.ValidFormat = false
		out.Confidence = 0.5
		out.Issues = append(out.Issues, "invalid PAN format")
	}

	return out
}

type FaceSimilarityResult struct {
	Score      float64 `json:"similarity_score"`
	Match      bool    `json:"is_match"`
	Confidence float64 `json:"confidence"`
}

// CompareFaceSimilarity is a biometric stub: real face comparison lives
// behind an external service. Scores are fixed plausible values keyed
// only on whether both images are usable.
func CompareFaceSimilarity(selfie *contractx.SelfieData, idPhotoAvailable bool, matchThreshold float64) FaceSimilarityResult {
	score := 0.65
	if selfie != nil && selfie.Uploaded && idPhotoAvailable {
		score = 0.87
	}

	return FaceSimilarityResult{
		Score:      score,
		Match:      score >= matchThreshold,
		Confidence: 0.90,
	}
}

type NameConsistencyResult struct {
	Consistent bool     `json:"is_consistent"`
	MatchScore float64  `json:"match_score"`
	Issues     []string `json:"issues,omitempty"`
}

// CheckNameConsistency compares names collected from different
// documents after normalization.
func CheckNameConsistency(names map[string]string) NameConsistencyResult {
	unique := make(map[string]struct{})
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		unique[normalized] = struct{}{}
	}

	switch len(unique) {
	case 0:
		return NameConsistencyResult{
			Consistent: false,
			MatchScore: 0.0,
			Issues:     []string{"no names provided"},
		}
	case 1:
		return NameConsistencyResult{
			Consistent: true,
			MatchScore: 1.0,
		}
	}

	score := 0.5
	if len(unique) == 2 {
		score = 0.7
	}

	variants := make([]string, 0, len(unique))
	for name := range unique {
		variants = append(variants, name)
	}
	sort.Strings(variants)

	return NameConsistencyResult{
		Consistent: false,
		MatchScore: score,
		Issues:     []string{fmt.Sprintf("name mismatch detected: %s", strings.Join(variants, ", "))},
	}
}

type AadhaarCheckResult struct {
	Valid       bool    `json:"is_valid"`
	FormatValid bool    `json:"format_valid"`
	Confidence  float64 `json:"confidence"`
	Issue       string  `json:"issue,omitempty"`
}

// VerifyAadhaarNumber validates the 12-digit Aadhaar format. A real
// implementation would call the UIDAI verification API.
func VerifyAadhaarNumber(number string) AadhaarCheckResult {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(number)
	if len(cleaned) != aadhaarDigitLength || !aadhaarDigitsPattern.MatchString(cleaned) {
		return AadhaarCheckResult{
			Valid:       false,
			FormatValid: false,
			Confidence:  0.0,
			Issue:       "invalid Aadhaar format",
		}
	}

	return AadhaarCheckResult{
		Valid:       true,
		FormatValid: true,
		Confidence:  0.95,
	}
}
