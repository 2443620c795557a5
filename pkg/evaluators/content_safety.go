package evaluators

import (
	"context"
	"log/slog"

	"sentinel-hq/sentinel/pkg/policy"
)

// DefaultToxicityThreshold is used when a condition does not declare one.
const DefaultToxicityThreshold = 0.8

// contentSafetyPath is the evaluation service endpoint for toxicity checks.
const contentSafetyPath = "/evaluate/content-safety"

// ContentSafetyClient runs the remote toxicity check. The service scores
// the content and applies the threshold itself; the client carries the
// threshold over the wire and interprets the returned pass flag and score.
type ContentSafetyClient struct {
	*HTTPClient
}

// NewContentSafetyClient creates a content safety evaluator client.
func NewContentSafetyClient(cfg ClientConfig, logger *slog.Logger) *ContentSafetyClient {
	return &ContentSafetyClient{
		HTTPClient: NewHTTPClient("content_analysis", cfg, logger),
	}
}

// Evaluate sends content for toxicity scoring. The threshold is read from
// the condition parameters ("toxicity_threshold" or "threshold").
func (c *ContentSafetyClient) Evaluate(ctx context.Context, content string, params policy.Parameters) (*Verdict, error) {
	threshold := params.FloatParam(DefaultToxicityThreshold, "toxicity_threshold", "threshold")

	resp, err := c.postEvaluation(ctx, contentSafetyPath, &EvaluationRequest{
		InputText: content,
		Metadata: map[string]any{
			"check_type":         "content_safety",
			"toxicity_threshold": threshold,
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
