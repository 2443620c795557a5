package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Severity is the informational severity level of a policy. It affects no
// control flow in the engine unless an action handler reads it.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities from least to most severe.
var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// ParseSeverity parses a severity string. Matching is case-sensitive;
// the document format uses lowercase severity values.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if _, ok := severityRank[sev]; !ok {
		return "", &ParseError{Field: "severity", Message: fmt.Sprintf("unknown severity %q", s)}
	}
	return sev, nil
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Valid reports whether s is one of the defined severity levels.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Parameters is an opaque, condition- or action-specific parameter payload.
// Validation happens at evaluation time in the handler that consumes it.
type Parameters map[string]any

// FloatParam returns the first of the named keys present as a float64.
// Integer values are widened. Missing or non-numeric values yield the
// fallback.
func (p Parameters) FloatParam(fallback float64, keys ...string) float64 {
	for _, key := range keys {
		v, ok := p[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return fallback
}

// StringParam returns the named key as a string, or the fallback if it is
// missing or not a string.
func (p Parameters) StringParam(key, fallback string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return fallback
}

// BoolParam returns the named key as a bool, or the fallback if it is
// missing or not a bool.
func (p Parameters) BoolParam(key string, fallback bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return fallback
}

// Condition is a single named check derived from a policy's conditions
// entry. It is not persisted independently.
type Condition struct {
	// Name identifies the check (e.g. "content_analysis", "keywords").
	// It is resolved to an evaluator client through the engine registry.
	Name string

	// Parameters is the opaque, condition-specific configuration.
	Parameters Parameters
}

// Action is a named side effect triggered after the verdict is computed.
// Symmetric to Condition.
type Action struct {
	// Name identifies the action handler (e.g. "log", "webhook").
	Name string

	// Parameters is the opaque, action-specific configuration. The shared
	// "on" parameter controls when the action fires (see engine.Dispatcher).
	Parameters Parameters
}

// Policy is the unit of governance.
type Policy struct {
	// ID is an opaque unique identifier assigned at creation time.
	ID string `yaml:"id"`

	// Name is the human-readable policy name.
	Name string `yaml:"name"`

	// Description is free text.
	Description string `yaml:"description"`

	// Severity is informational (low, medium, high, critical).
	Severity Severity `yaml:"severity"`

	// Enabled gates the whole policy. A disabled policy short-circuits
	// evaluation with a skipped verdict; no conditions or actions run.
	Enabled bool `yaml:"enabled"`

	// Conditions are the declared checks, in declaration order.
	Conditions ConditionList `yaml:"conditions"`

	// Actions are the declared side effects, in declaration order.
	Actions ActionList `yaml:"actions"`

	// SourceFile is the file this policy was loaded from, if any.
	SourceFile string `yaml:"-"`
}

// Context is ambient evaluation metadata supplied by the caller per
// evaluation. It is not part of the policy and is never mutated by the
// engine.
type Context struct {
	UserID        string            `json:"user_id"`
	Organization  string            `json:"organization"`
	PolicyVersion string            `json:"policy_version"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ConditionList is an ordered list of conditions decoded from a YAML
// mapping. Order follows the document; duplicate names are a parse error.
type ConditionList []Condition

// UnmarshalYAML decodes a YAML mapping into an ordered condition list.
func (l *ConditionList) UnmarshalYAML(node *yaml.Node) error {
	entries, err := decodeOrderedMapping(node, "conditions")
	if err != nil {
		return err
	}
	conds := make(ConditionList, 0, len(entries))
	for _, e := range entries {
		conds = append(conds, Condition{Name: e.name, Parameters: e.params})
	}
	*l = conds
	return nil
}

// ActionList is an ordered list of actions decoded from a YAML mapping.
type ActionList []Action

// UnmarshalYAML decodes a YAML mapping into an ordered action list.
func (l *ActionList) UnmarshalYAML(node *yaml.Node) error {
	entries, err := decodeOrderedMapping(node, "actions")
	if err != nil {
		return err
	}
	acts := make(ActionList, 0, len(entries))
	for _, e := range entries {
		acts = append(acts, Action{Name: e.name, Parameters: e.params})
	}
	*l = acts
	return nil
}

type orderedEntry struct {
	name   string
	params Parameters
}

// decodeOrderedMapping decodes a YAML mapping node into named parameter
// payloads, preserving document order and rejecting duplicate keys.
// A null node decodes to an empty list.
func decodeOrderedMapping(node *yaml.Node, field string) ([]orderedEntry, error) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Field:   field,
			Line:    node.Line,
			Message: fmt.Sprintf("expected a mapping, got %s", node.Tag),
		}
	}

	seen := make(map[string]bool)
	var entries []orderedEntry
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return nil, &ParseError{
				Field:   field,
				Line:    keyNode.Line,
				Message: "mapping key is not a string",
				Cause:   err,
			}
		}
		if seen[name] {
			return nil, &ParseError{
				Field:   field,
				Line:    keyNode.Line,
				Message: fmt.Sprintf("duplicate key %q", name),
			}
		}
		seen[name] = true

		params := Parameters{}
		if valNode.Tag != "!!null" {
			if err := valNode.Decode(&params); err != nil {
				return nil, &ParseError{
					Field:   fmt.Sprintf("%s.%s", field, name),
					Line:    valNode.Line,
					Message: "parameters are not a mapping",
					Cause:   err,
				}
			}
		}

		entries = append(entries, orderedEntry{name: name, params: params})
	}
	return entries, nil
}
