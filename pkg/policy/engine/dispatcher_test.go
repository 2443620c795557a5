package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentinel-hq/sentinel/pkg/policy"
)

func blockedInput() *ActionInput {
	return &ActionInput{
		EvaluationID: "eval-1",
		PolicyID:     "pol-1",
		PolicyName:   "test-policy",
		Severity:     policy.SeverityHigh,
		Passed:       false,
		Status:       StatusBlocked,
	}
}

func TestDispatchOrderAndIndependence(t *testing.T) {
	var order []string
	mkHandler := func(name string, err error) ActionHandler {
		return handlerFunc(func(ctx context.Context, params policy.Parameters, input *ActionInput) error {
			order = append(order, name)
			return err
		})
	}

	d := NewDispatcher(nil)
	d.Register("first", mkHandler("first", errors.New("boom")))
	d.Register("second", mkHandler("second", nil))
	d.Register("third", mkHandler("third", nil))

	actions := policy.ActionList{
		{Name: "first", Parameters: policy.Parameters{}},
		{Name: "second", Parameters: policy.Parameters{}},
		{Name: "third", Parameters: policy.Parameters{}},
	}

	outcomes := d.Dispatch(context.Background(), actions, blockedInput())

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Status != ActionFailed || outcomes[0].Error == "" {
		t.Errorf("first outcome = %+v, want failed with error", outcomes[0])
	}
	if outcomes[1].Status != ActionExecuted || outcomes[2].Status != ActionExecuted {
		t.Error("a failing action must not stop the remaining actions")
	}
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("execution order = %v", order)
	}
}

func TestDispatchOnParameter(t *testing.T) {
	tests := []struct {
		name   string
		on     string
		passed bool
		want   ActionStatus
	}{
		{name: "blocked fires on block", on: "blocked", passed: false, want: ActionExecuted},
		{name: "blocked skips on allow", on: "blocked", passed: true, want: ActionSkipped},
		{name: "allowed fires on allow", on: "allowed", passed: true, want: ActionExecuted},
		{name: "allowed skips on block", on: "allowed", passed: false, want: ActionSkipped},
		{name: "always fires on block", on: "always", passed: false, want: ActionExecuted},
		{name: "always fires on allow", on: "always", passed: true, want: ActionExecuted},
		{name: "default is always", on: "", passed: true, want: ActionExecuted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executed := false
			d := NewDispatcher(nil)
			d.Register("probe", handlerFunc(func(ctx context.Context, params policy.Parameters, input *ActionInput) error {
				executed = true
				return nil
			}))

			params := policy.Parameters{}
			if tt.on != "" {
				params["on"] = tt.on
			}
			input := blockedInput()
			input.Passed = tt.passed

			outcomes := d.Dispatch(context.Background(), policy.ActionList{{Name: "probe", Parameters: params}}, input)

			if outcomes[0].Status != tt.want {
				t.Errorf("status = %q, want %q", outcomes[0].Status, tt.want)
			}
			if executed != (tt.want == ActionExecuted) {
				t.Errorf("executed = %v with status %q", executed, outcomes[0].Status)
			}
		})
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d := NewDispatcher(nil)
	outcomes := d.Dispatch(context.Background(), policy.ActionList{
		{Name: "quarantine", Parameters: policy.Parameters{}},
	}, blockedInput())

	if outcomes[0].Status != ActionFailed {
		t.Errorf("status = %q, want failed", outcomes[0].Status)
	}
	if outcomes[0].Error == "" {
		t.Error("expected an error message naming the unknown action")
	}
}

func TestWebhookAction(t *testing.T) {
	var received ActionInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode webhook payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := NewWebhookAction(nil)
	input := blockedInput()

	err := hook.Execute(context.Background(), policy.Parameters{"url": srv.URL}, input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if received.EvaluationID != input.EvaluationID || received.Status != input.Status {
		t.Errorf("webhook received %+v", received)
	}
}

func TestWebhookActionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	hook := NewWebhookAction(nil)

	if err := hook.Execute(context.Background(), policy.Parameters{"url": srv.URL}, blockedInput()); err == nil {
		t.Error("expected error for non-2xx webhook response")
	}
	if err := hook.Execute(context.Background(), policy.Parameters{}, blockedInput()); err == nil {
		t.Error("expected error for missing url parameter")
	}
}

// handlerFunc adapts a function to the ActionHandler interface.
type handlerFunc func(ctx context.Context, params policy.Parameters, input *ActionInput) error

func (f handlerFunc) Execute(ctx context.Context, params policy.Parameters, input *ActionInput) error {
	return f(ctx, params, input)
}
