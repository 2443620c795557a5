// Package policy defines the policy document model and its YAML parser.
//
// A policy is the unit of governance: an ordered set of named conditions
// (remote content checks) and named actions (side effects keyed on the
// evaluation verdict). Policies are declarative; the evaluation semantics
// live in pkg/policy/engine.
//
// Condition and action parameters are opaque at parse time. They are
// carried as loosely-typed maps and validated lazily by the handler that
// consumes them, so new condition and action types can be introduced
// without changing the document model. Typed accessors (FloatParam,
// StringParam, BoolParam) provide the bridge from the opaque payloads to
// handler-specific settings.
//
// Declaration order of conditions and actions is significant: condition
// outcomes are reported in declaration order and actions execute in
// declaration order. The parser therefore decodes the conditions and
// actions mappings through yaml.Node rather than a plain map.
package policy
