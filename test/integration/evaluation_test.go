//go:build integration

package integration

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"sentinel-hq/sentinel/internal/evaltest"
	"sentinel-hq/sentinel/pkg/audit"
	"sentinel-hq/sentinel/pkg/evaluators"
	"sentinel-hq/sentinel/pkg/policy"
	"sentinel-hq/sentinel/pkg/policy/engine"
)

const governancePolicy = `
name: content-governance
severity: high
enabled: true
conditions:
  content_analysis:
    toxicity_threshold: 0.8
  keywords:
    threshold: 0.1
actions:
  log:
    level: warn
  flag:
    reason: governance violation
    on: blocked
`

// TestEvaluationPipeline exercises the full path: parse a policy, run its
// conditions against the evaluation service, dispatch actions, and persist
// the result to the audit store.
func TestEvaluationPipeline(t *testing.T) {
	srv := evaltest.NewMockServer()
	defer srv.Close()

	srv.SetResponse("/evaluate/content-safety", evaltest.MockResponse{
		Body: evaltest.PassResponse(0.05),
	})
	srv.SetResponse("/evaluate/keyword-filter", evaltest.MockResponse{
		Body: evaltest.FailResponse(0.9, map[string]any{
			"found_keywords": []string{"hate"},
		}),
	})

	logger := slog.Default()
	registry := engine.DefaultRegistry(evaluators.ClientConfig{BaseURL: srv.URL()}, logger)
	dispatcher := engine.DefaultDispatcher(logger)

	eng, err := engine.NewEngine(engine.DefaultConfig(), registry, dispatcher, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	pol, err := policy.ParseBytes([]byte(governancePolicy))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}

	store, err := audit.NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	pctx := &policy.Context{UserID: "u1", Organization: "acme", PolicyVersion: "1.0.0"}

	result, err := eng.Evaluate(ctx, pol, "a message containing hate", pctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if result.Passed || result.Status != engine.StatusBlocked {
		t.Errorf("got passed=%v status=%q, want blocked", result.Passed, result.Status)
	}
	if len(result.Conditions) != 2 {
		t.Fatalf("got %d condition outcomes, want 2", len(result.Conditions))
	}
	if result.Conditions[0].Name != "content_analysis" || !result.Conditions[0].Passed {
		t.Errorf("content_analysis outcome = %+v", result.Conditions[0])
	}
	if result.Conditions[1].Name != "keywords" || result.Conditions[1].Passed {
		t.Errorf("keywords outcome = %+v", result.Conditions[1])
	}
	// Both actions fire: log always, flag on blocked.
	if len(result.Actions) != 2 {
		t.Fatalf("got %d action outcomes, want 2", len(result.Actions))
	}
	for _, act := range result.Actions {
		if act.Status != engine.ActionExecuted {
			t.Errorf("action %s = %q, want executed", act.Name, act.Status)
		}
	}

	if err := store.Save(ctx, result, pctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, err := store.Get(ctx, result.EvaluationID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.PolicyName != "content-governance" || rec.Passed {
		t.Errorf("audit record = %+v", rec)
	}
	if len(rec.Result.Conditions) != 2 {
		t.Errorf("audit record lost condition outcomes: %+v", rec.Result)
	}
}

// TestEvaluationPipelineRecoversFromOutage verifies the unavailable-retry
// path end to end: the first request fails at the transport, the retry
// succeeds.
func TestEvaluationPipelineRecoversFromOutage(t *testing.T) {
	srv := evaltest.NewMockServer()
	defer srv.Close()

	// First attempt times out against the 1s condition deadline, the
	// retried attempt answers promptly.
	srv.SetResponse("/evaluate/keyword-filter", evaltest.MockResponse{
		Body:  evaltest.PassResponse(0.0),
		Delay: 1500 * time.Millisecond,
	})

	logger := slog.Default()
	registry := engine.DefaultRegistry(evaluators.ClientConfig{BaseURL: srv.URL()}, logger)

	cfg := engine.DefaultConfig().
		WithConditionTimeout(time.Second).
		WithRetry(1, 50*time.Millisecond)

	eng, err := engine.NewEngine(cfg, registry, engine.DefaultDispatcher(logger), logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	pol, err := policy.ParseBytes([]byte("name: p\nenabled: true\nconditions:\n  keywords: {}\n"))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}

	go func() {
		// Clear the delay once the first attempt is in flight so the retry
		// succeeds.
		time.Sleep(500 * time.Millisecond)
		srv.SetResponse("/evaluate/keyword-filter", evaltest.MockResponse{
			Body: evaltest.PassResponse(0.0),
		})
	}()

	result, err := eng.Evaluate(context.Background(), pol, "content", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !result.Passed {
		t.Errorf("expected pass after retry, got %+v", result)
	}
	if got := len(result.Conditions[0].Latencies); got != 2 {
		t.Errorf("got %d latency entries, want 2 (timeout + retry)", got)
	}
	if srv.RequestCount("/evaluate/keyword-filter") != 2 {
		t.Errorf("request count = %d, want 2", srv.RequestCount("/evaluate/keyword-filter"))
	}
}
