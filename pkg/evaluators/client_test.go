package evaluators

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sentinel-hq/sentinel/internal/evaltest"
	"sentinel-hq/sentinel/pkg/policy"
)

func TestContentSafetyEvaluate(t *testing.T) {
	srv := evaltest.NewMockServer()
	defer srv.Close()

	srv.SetResponse("/evaluate/content-safety", evaltest.MockResponse{
		Body: evaltest.PassResponse(0.12),
	})

	client := NewContentSafetyClient(ClientConfig{BaseURL: srv.URL()}, nil)
	defer client.Close()

	verdict, err := client.Evaluate(context.Background(), "hello there", policy.Parameters{
		"toxicity_threshold": 0.8,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !verdict.Passed {
		t.Error("expected pass")
	}
	if verdict.Score == nil || *verdict.Score != 0.12 {
		t.Errorf("Score = %v, want 0.12", verdict.Score)
	}
	if verdict.Details["threshold"] != 0.8 {
		t.Errorf("threshold detail = %v, want 0.8", verdict.Details["threshold"])
	}
	if srv.RequestCount("/evaluate/content-safety") != 1 {
		t.Errorf("request count = %d, want 1", srv.RequestCount("/evaluate/content-safety"))
	}
}

func TestKeywordFilterEvaluate(t *testing.T) {
	srv := evaltest.NewMockServer()
	defer srv.Close()

	srv.SetResponse("/evaluate/keyword-filter", evaltest.MockResponse{
		Body: evaltest.FailResponse(0.9, map[string]any{
			"found_keywords": []string{"hate", "spam"},
		}),
	})

	client := NewKeywordFilterClient(ClientConfig{BaseURL: srv.URL()}, nil)
	defer client.Close()

	verdict, err := client.Evaluate(context.Background(), "hate and spam", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if verdict.Passed {
		t.Error("expected fail")
	}
	if got := FoundKeywords(verdict); len(got) != 2 || got[0] != "hate" || got[1] != "spam" {
		t.Errorf("FoundKeywords = %v", got)
	}
	// Default threshold applies when no parameters are given.
	if verdict.Details["threshold"] != DefaultKeywordThreshold {
		t.Errorf("threshold detail = %v, want default", verdict.Details["threshold"])
	}
}

func TestEvaluateEmptyContent(t *testing.T) {
	// Empty content is valid input: it is sent to the remote as-is and
	// evaluated, never rejected client-side.
	srv := evaltest.NewMockServer()
	defer srv.Close()

	srv.SetResponse("/evaluate/content-safety", evaltest.MockResponse{
		Body: evaltest.PassResponse(0.0),
	})

	client := NewContentSafetyClient(ClientConfig{BaseURL: srv.URL()}, nil)
	defer client.Close()

	verdict, err := client.Evaluate(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Evaluate(empty content): %v", err)
	}
	if verdict == nil || !verdict.Passed {
		t.Errorf("verdict = %+v, want pass", verdict)
	}
	if srv.RequestCount("/evaluate/content-safety") != 1 {
		t.Fatalf("request count = %d, want 1", srv.RequestCount("/evaluate/content-safety"))
	}

	var sent map[string]any
	if err := json.Unmarshal(srv.LastRequestBody("/evaluate/content-safety"), &sent); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	got, ok := sent["input_text"]
	if !ok {
		t.Fatal("input_text missing from request body")
	}
	if got != "" {
		t.Errorf("input_text = %q, want empty string", got)
	}
}

func TestEvaluateRejectedOnErrorStatus(t *testing.T) {
	srv := evaltest.NewMockServer()
	defer srv.Close()

	srv.SetResponse("/evaluate/keyword-filter", evaltest.MockResponse{
		StatusCode: 422,
		RawBody:    `{"detail": "input_text required"}`,
	})

	client := NewKeywordFilterClient(ClientConfig{BaseURL: srv.URL()}, nil)
	defer client.Close()

	_, err := client.Evaluate(context.Background(), "content", nil)

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %T: %v", err, err)
	}
	if rejected.StatusCode != 422 {
		t.Errorf("StatusCode = %d, want 422", rejected.StatusCode)
	}
	if rejected.Body == "" {
		t.Error("expected body to be preserved for diagnosis")
	}
}

func TestEvaluateMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "<html>gateway error</html>"},
		{name: "missing passed", raw: `{"score": 0.5, "details": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := evaltest.NewMockServer()
			defer srv.Close()

			srv.SetResponse("/evaluate/content-safety", evaltest.MockResponse{RawBody: tt.raw})

			client := NewContentSafetyClient(ClientConfig{BaseURL: srv.URL()}, nil)
			defer client.Close()

			_, err := client.Evaluate(context.Background(), "content", nil)

			var malformed *MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedError, got %T: %v", err, err)
			}
			if malformed.RawResponse != tt.raw {
				t.Errorf("RawResponse = %q, want %q", malformed.RawResponse, tt.raw)
			}
		})
	}
}

func TestEvaluateUnavailableOnConnectionFailure(t *testing.T) {
	// A closed server gives a connection refused error.
	srv := evaltest.NewMockServer()
	base := srv.URL()
	srv.Close()

	client := NewContentSafetyClient(ClientConfig{BaseURL: base}, nil)
	defer client.Close()

	_, err := client.Evaluate(context.Background(), "content", nil)

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *UnavailableError, got %T: %v", err, err)
	}
	if unavailable.Timeout {
		t.Error("connection refused should not be marked as timeout")
	}
}

func TestEvaluateUnavailableOnTimeout(t *testing.T) {
	srv := evaltest.NewMockServer()
	defer srv.Close()

	srv.SetResponse("/evaluate/keyword-filter", evaltest.MockResponse{
		Body:  evaltest.PassResponse(0),
		Delay: 2 * time.Second,
	})

	client := NewKeywordFilterClient(ClientConfig{BaseURL: srv.URL()}, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Evaluate(ctx, "content", nil)

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *UnavailableError, got %T: %v", err, err)
	}
	if !unavailable.Timeout {
		t.Errorf("expected Timeout=true: %v", unavailable)
	}
}
