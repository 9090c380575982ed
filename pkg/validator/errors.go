package validator

import (
	"fmt"
	"strings"

	"github.com/reasy/ariadne/pkg/schema"
)

// Direction is the orientation of a relationship pattern, derived from its
// left and right arrow tokens.
type Direction string

const (
	DirectionLeftToRight Direction = "left_to_right"
	DirectionRightToLeft Direction = "right_to_left"
	DirectionBoth        Direction = "both"
	DirectionUndirected  Direction = "undirected"
)

// Arrow renders the direction the way it appears in diagnostics.
func (d Direction) Arrow() string {
	switch d {
	case DirectionLeftToRight:
		return "->"
	case DirectionRightToLeft:
		return "<-"
	case DirectionBoth:
		return "<->"
	default:
		return "-"
	}
}

// SchemaViolation describes one relationship occurrence the schema does not
// permit.
type SchemaViolation struct {
	// RelType joins the pattern's type alternatives with "|".
	RelType     string
	LeftLabels  []string
	RightLabels []string
	Direction   Direction
	// Snippet reconstructs the offending pattern, e.g.
	// "(e:Endpoint)<-[:HasAddress]-(ea:EndpointAddress)".
	Snippet string
	// RulePath locates the pattern in the parse tree as a "/"-joined rule
	// name sequence.
	RulePath string
	// AllowedPairs enumerates the schema's declared pairs for the edge
	// type(s), in first-declared order.
	AllowedPairs []schema.Pair
}

// ValidationError is the single failure value a validation produces. Exactly
// one concrete kind is returned per call: *SyntaxError, *CompatibilityError,
// or *SchemaError.
type ValidationError interface {
	error
	validationError()
}

// SyntaxError reports that the query did not parse, normalization did not
// help, and the segmented fallback produced no trees. Message carries the
// original parser diagnostics.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string    { return e.Message }
func (e *SyntaxError) validationError() {}

// CompatibilityError reports constructs the downstream engine cannot execute.
type CompatibilityError struct {
	Issues []string
}

func (e *CompatibilityError) validationError() {}

func (e *CompatibilityError) Error() string {
	var b strings.Builder
	b.WriteString("Cypher uses constructs not supported by Memgraph:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// SchemaError reports relationship patterns the schema does not permit.
type SchemaError struct {
	Violations []SchemaViolation
}

func (e *SchemaError) validationError() {}

func (e *SchemaError) Error() string {
	lines := []string{"Cypher schema validation failed:"}
	for _, v := range e.Violations {
		allowed := formatAllowedPairs(v.AllowedPairs)
		lines = append(lines, fmt.Sprintf(
			"- Invalid relationship: %s %s %s via %s. Allowed: %s. Pattern: %s [rule=%s]",
			strings.Join(v.LeftLabels, ","),
			v.Direction.Arrow(),
			strings.Join(v.RightLabels, ","),
			v.RelType,
			allowed,
			v.Snippet,
			v.RulePath,
		))
		lines = append(lines, fmt.Sprintf(
			"  Hint: %s is only allowed as %s. Check direction and node labels.",
			v.RelType, allowed,
		))
	}
	return strings.Join(lines, "\n")
}

func formatAllowedPairs(pairs []schema.Pair) string {
	if len(pairs) == 0 {
		return "none"
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s -> %s", p.Src, p.Dst)
	}
	return strings.Join(parts, "; ")
}
