package evaluators

import (
	"context"
	"log/slog"

	"sentinel-hq/sentinel/pkg/policy"
)

// DefaultKeywordThreshold is used when a condition does not declare one.
const DefaultKeywordThreshold = 0.1

// keywordFilterPath is the evaluation service endpoint for keyword checks.
const keywordFilterPath = "/evaluate/keyword-filter"

// KeywordFilterClient runs the remote banned-keyword check. The service
// returns a boolean pass flag plus the list of matched terms, which is
// surfaced in the verdict details for the audit trail.
type KeywordFilterClient struct {
	*HTTPClient
}

// NewKeywordFilterClient creates a keyword filter evaluator client.
func NewKeywordFilterClient(cfg ClientConfig, logger *slog.Logger) *KeywordFilterClient {
	return &KeywordFilterClient{
		HTTPClient: NewHTTPClient("keywords", cfg, logger),
	}
}

// Evaluate sends content for keyword filtering. The severity threshold is
// read from the condition parameters ("keyword_threshold" or "threshold").
func (c *KeywordFilterClient) Evaluate(ctx context.Context, content string, params policy.Parameters) (*Verdict, error) {
	threshold := params.FloatParam(DefaultKeywordThreshold, "keyword_threshold", "threshold")

	resp, err := c.postEvaluation(ctx, keywordFilterPath, &EvaluationRequest{
		InputText: content,
		Metadata: map[string]any{
			"check_type":        "keyword_filter",
			"keyword_threshold": threshold,
		},
	})
	if err != nil {
		return nil, err
	}

	details := resp.Details
	if details == nil {
		details = map[string]any{}
	}
	details["threshold"] = threshold

	return &Verdict{
		Passed:  *resp.Passed,
		Score:   resp.Score,
		Details: details,
	}, nil
}

// FoundKeywords extracts the matched terms from a keyword verdict's
// details. It returns nil when the service reported none.
func FoundKeywords(v *Verdict) []string {
	if v == nil || v.Details == nil {
		return nil
	}
	raw, ok := v.Details["found_keywords"].([]any)
	if !ok {
		return nil
	}
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			keywords = append(keywords, s)
		}
	}
	return keywords
}
