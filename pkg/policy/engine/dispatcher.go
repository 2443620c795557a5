package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"sentinel-hq/sentinel/pkg/policy"
)

// ActionInput is the verdict summary handed to each action handler.
// Handlers read it; they can never alter the already-computed verdict.
type ActionInput struct {
	EvaluationID string             `json:"evaluation_id"`
	PolicyID     string             `json:"policy_id"`
	PolicyName   string             `json:"policy_name"`
	Severity     policy.Severity    `json:"severity"`
	Passed       bool               `json:"passed"`
	Status       Status             `json:"status"`
	Context      *policy.Context    `json:"context,omitempty"`
	Conditions   []ConditionOutcome `json:"conditions,omitempty"`
}

// ActionHandler executes one named action type.
type ActionHandler interface {
	// Execute runs the action. Parameters are the action's opaque payload.
	Execute(ctx context.Context, params policy.Parameters, input *ActionInput) error
}

// Dispatcher executes the action set associated with a policy outcome.
// Actions run in declaration order, sequentially (ordering is part of the
// observable audit trail), each independently: one action's failure is
// recorded and does not stop the rest. There is no rollback; actions are
// best-effort side effects.
//
// The shared "on" parameter controls when an action fires:
// "blocked", "allowed", or "always" (the default).
type Dispatcher struct {
	handlers map[string]ActionHandler
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]ActionHandler),
		logger:   logger.With("component", "engine.dispatcher"),
	}
}

// Register binds an action name to a handler. Call only during startup.
func (d *Dispatcher) Register(name string, handler ActionHandler) {
	d.handlers[name] = handler
}

// Dispatch executes the declared actions against the computed verdict and
// returns one outcome per action, in declaration order.
func (d *Dispatcher) Dispatch(ctx context.Context, actions policy.ActionList, input *ActionInput) []ActionOutcome {
	outcomes := make([]ActionOutcome, 0, len(actions))

	for _, act := range actions {
		outcome := ActionOutcome{Name: act.Name}

		if !d.shouldFire(act.Parameters, input.Passed) {
			outcome.Status = ActionSkipped
			outcomes = append(outcomes, outcome)
			continue
		}

		handler, ok := d.handlers[act.Name]
		if !ok {
			outcome.Status = ActionFailed
			outcome.Error = fmt.Sprintf("unknown action %q", act.Name)
			d.logger.Warn("unknown action", "action", act.Name, "policy_id", input.PolicyID)
			outcomes = append(outcomes, outcome)
			continue
		}

		if err := handler.Execute(ctx, act.Parameters, input); err != nil {
			outcome.Status = ActionFailed
			outcome.Error = err.Error()
			d.logger.Warn("action failed",
				"action", act.Name,
				"policy_id", input.PolicyID,
				"error", err,
			)
		} else {
			outcome.Status = ActionExecuted
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// shouldFire interprets the action's "on" parameter against the verdict.
func (d *Dispatcher) shouldFire(params policy.Parameters, passed bool) bool {
	switch params.StringParam("on", "always") {
	case "blocked":
		return !passed
	case "allowed":
		return passed
	default:
		return true
	}
}

// DefaultDispatcher creates a dispatcher with the built-in action
// handlers registered: log, flag, block, webhook.
func DefaultDispatcher(logger *slog.Logger) *Dispatcher {
	d := NewDispatcher(logger)
	d.Register("log", &LogAction{logger: logger})
	d.Register("flag", &FlagAction{logger: logger})
	d.Register("block", &BlockAction{})
	d.Register("webhook", NewWebhookAction(logger))
	return d
}

// LogAction writes the verdict to the structured log. The "level"
// parameter selects info (default) or warn.
type LogAction struct {
	logger *slog.Logger
}

// Execute logs the verdict summary.
func (a *LogAction) Execute(ctx context.Context, params policy.Parameters, input *ActionInput) error {
	logger := a.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"evaluation_id", input.EvaluationID,
		"policy_id", input.PolicyID,
		"policy_name", input.PolicyName,
		"severity", input.Severity,
		"passed", input.Passed,
		"status", input.Status,
	}
	if input.Context != nil {
		attrs = append(attrs, "user_id", input.Context.UserID, "organization", input.Context.Organization)
	}

	if params.StringParam("level", "info") == "warn" {
		logger.Warn("policy evaluation", attrs...)
	} else {
		logger.Info("policy evaluation", attrs...)
	}
	return nil
}

// FlagAction marks the evaluation for human review in the log stream.
// The "reason" parameter is carried through for triage.
type FlagAction struct {
	logger *slog.Logger
}

// Execute records the review flag.
func (a *FlagAction) Execute(ctx context.Context, params policy.Parameters, input *ActionInput) error {
	logger := a.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("evaluation flagged for review",
		"evaluation_id", input.EvaluationID,
		"policy_id", input.PolicyID,
		"reason", params.StringParam("reason", "policy flag"),
		"passed", input.Passed,
	)
	return nil
}

// BlockAction is a declarative marker. The verdict is computed from the
// conditions before any action runs, so blocking needs no side effect
// here; declaring the action keeps the intent visible in the policy and
// its execution visible in the audit trail.
type BlockAction struct{}

// Execute is a no-op.
func (a *BlockAction) Execute(ctx context.Context, params policy.Parameters, input *ActionInput) error {
	return nil
}

// WebhookAction POSTs the verdict summary as JSON to the URL in the
// action's "url" parameter.
type WebhookAction struct {
	client *http.Client
	logger *slog.Logger
}

// NewWebhookAction creates a webhook action handler with its own pooled
// HTTP client.
func NewWebhookAction(logger *slog.Logger) *WebhookAction {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookAction{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With("component", "engine.webhook"),
	}
}

// Execute posts the verdict to the configured URL.
func (a *WebhookAction) Execute(ctx context.Context, params policy.Parameters, input *ActionInput) error {
	url := params.StringParam("url", "")
	if url == "" {
		return fmt.Errorf("webhook action requires a %q parameter", "url")
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	a.logger.Debug("webhook delivered", "url", url, "evaluation_id", input.EvaluationID)
	return nil
}
