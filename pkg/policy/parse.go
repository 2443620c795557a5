package policy

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ParseBytes parses a policy document from YAML. If the document carries
// no id, one is assigned; a policy id is immutable from then on.
//
// Parameter payloads inside conditions and actions are deliberately not
// validated here. Parse errors cover structure only: unknown severity,
// non-mapping conditions/actions, duplicate keys.
func ParseBytes(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, pe
		}
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return nil, &ParseError{Field: "document", Message: "type error", Cause: te}
		}
		return nil, &ParseError{Field: "document", Message: "invalid YAML", Cause: err}
	}

	if p.Name == "" {
		return nil, &ParseError{Field: "name", Message: "name is required"}
	}
	if p.Severity == "" {
		p.Severity = SeverityMedium
	}
	if !p.Severity.Valid() {
		return nil, &ParseError{
			Field:   "severity",
			Message: fmt.Sprintf("unknown severity %q", p.Severity),
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return &p, nil
}

// ParseFile parses a policy document from a YAML file.
func ParseFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}
	p, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy file %q: %w", path, err)
	}
	p.SourceFile = path
	return p, nil
}
