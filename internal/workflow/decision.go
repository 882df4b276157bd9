package workflow

import (
	"fmt"
	"strings"

	"schemagraph/internal/model"
)

// Decision is a reviewer verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision parses a decision name.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", model.NewError(model.ClassTransition, "decision", "", model.ErrUnknownDecision, fmt.Sprintf("%q", s))
	}

	return d, nil
}

// IsValid returns true if d is a known decision.
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

func (d Decision) propertyStatus() model.PropertyStatus {
	if d == DecisionApprove {
		return model.PropertyApproved
	}

	return model.PropertyRejected
}

func (d Decision) mappingStatus() model.MappingStatus {
	if d == DecisionApprove {
		return model.MappingApproved
	}

	return model.MappingRejected
}

// EntityKind selects which entities a bulk decision applies to.
type EntityKind string

const (
	EntityProperty EntityKind = "property"
	EntityMapping  EntityKind = "mapping"
)

// ParseEntityKind parses an entity kind name.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case EntityProperty, EntityMapping:
		return k, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}
