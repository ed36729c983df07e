package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	errFieldIDMissing    = errors.New("model: field id is required")
	errFieldLabelMissing = errors.New("model: field label is required")
)

// ValidateSchema enforces the load-time invariants of a schema: every field has
// an id, a label and a known kind, and ids are unique. Conditional rules are
// not checked here; dangling references resolve to "never visible" at
// evaluation time and are reported by Lint.
func ValidateSchema(schema FormSchema) error {
	seen := make(map[string]int, len(schema.Fields))
	for i, field := range schema.Fields {
		if strings.TrimSpace(field.ID) == "" {
			return fmt.Errorf("fields[%d]: %w", i, errFieldIDMissing)
		}
		if strings.TrimSpace(field.Label) == "" {
			return fmt.Errorf("fields[%d] (%s): %w", i, field.ID, errFieldLabelMissing)
		}
		if !field.Kind.Valid() {
			return fmt.Errorf("fields[%d] (%s): model: unknown field type %q", i, field.ID, field.Kind)
		}
		if prev, exists := seen[field.ID]; exists {
			return fmt.Errorf("fields[%d]: model: duplicate field id %q (first defined at fields[%d])", i, field.ID, prev)
		}
		seen[field.ID] = i
	}
	return nil
}

// IssueKind classifies a lint finding.
type IssueKind string

const (
	IssueDanglingReference IssueKind = "dangling_reference"
	IssueSelfReference     IssueKind = "self_reference"
	IssueCycle             IssueKind = "cycle"
	IssueUnknownOperator   IssueKind = "unknown_operator"
	IssueNoOptions         IssueKind = "no_options"
)

// Issue is a non-fatal schema finding for schema authors.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	FieldID string    `json:"fieldId"`
	Message string    `json:"message"`
	Path    []string  `json:"path,omitempty"`
}

// Lint reports authoring problems that do not stop a schema from loading.
// Cycles are reported once per cycle, anchored at the member that appears
// first in schema order.
func Lint(schema FormSchema) []Issue {
	var issues []Issue
	index := schema.Index()

	for _, field := range schema.Fields {
		if field.Kind.Selectable() && len(field.Options) == 0 {
			issues = append(issues, Issue{
				Kind:    IssueNoOptions,
				FieldID: field.ID,
				Message: fmt.Sprintf("%s field %q has no options", field.Kind, field.ID),
			})
		}

		rule := field.Conditional
		if rule == nil {
			continue
		}
		if !knownOperator(rule.Operator) {
			issues = append(issues, Issue{
				Kind:    IssueUnknownOperator,
				FieldID: field.ID,
				Message: fmt.Sprintf("field %q uses unknown operator %q; it will always be visible", field.ID, rule.Operator),
			})
		}
		if rule.DependsOn == field.ID {
			issues = append(issues, Issue{
				Kind:    IssueSelfReference,
				FieldID: field.ID,
				Message: fmt.Sprintf("field %q depends on itself", field.ID),
			})
			continue
		}
		if _, ok := index[rule.DependsOn]; !ok {
			issues = append(issues, Issue{
				Kind:    IssueDanglingReference,
				FieldID: field.ID,
				Message: fmt.Sprintf("field %q depends on unknown field %q; it will never be visible", field.ID, rule.DependsOn),
			})
		}
	}

	issues = append(issues, findCycles(schema, index)...)
	return issues
}

// DependencyCycles returns every conditional cycle of length two or more, each
// rotated to start at its earliest member in schema order.
func DependencyCycles(schema FormSchema) [][]string {
	var out [][]string
	for _, issue := range findCycles(schema, schema.Index()) {
		out = append(out, issue.Path)
	}
	return out
}

func findCycles(schema FormSchema, index map[string]int) []Issue {
	// Every field has at most one outgoing edge, so walking each chain finds
	// every cycle.
	next := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		if field.Conditional == nil {
			continue
		}
		target := field.Conditional.DependsOn
		if target == field.ID {
			continue
		}
		if _, ok := index[target]; !ok {
			continue
		}
		next[field.ID] = target
	}

	reported := make(map[string]struct{})
	var issues []Issue
	for _, field := range schema.Fields {
		position := map[string]int{}
		var chain []string
		current := field.ID
		for {
			if at, seen := position[current]; seen {
				cycle := rotateToEarliest(chain[at:], index)
				key := strings.Join(cycle, "\x00")
				if _, done := reported[key]; !done {
					reported[key] = struct{}{}
					issues = append(issues, Issue{
						Kind:    IssueCycle,
						FieldID: cycle[0],
						Message: fmt.Sprintf("conditional cycle: %s -> %s", strings.Join(cycle, " -> "), cycle[0]),
						Path:    cycle,
					})
				}
				break
			}
			target, ok := next[current]
			if !ok {
				break
			}
			position[current] = len(chain)
			chain = append(chain, current)
			current = target
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return index[issues[i].FieldID] < index[issues[j].FieldID]
	})
	return issues
}

func rotateToEarliest(cycle []string, index map[string]int) []string {
	start := 0
	for i, id := range cycle {
		if index[id] < index[cycle[start]] {
			start = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[start:]...)
	out = append(out, cycle[:start]...)
	return out
}

func knownOperator(op string) bool {
	switch op {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorGreaterThan, OperatorLessThan:
		return true
	default:
		return false
	}
}
