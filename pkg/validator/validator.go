// Package validator statically checks Cypher queries before they reach the
// graph store.
//
// A Validator holds an immutable graph schema and admits or rejects query
// text in a single synchronous call. The pipeline per validation:
//
//	parse raw text
//	  -> on failure, normalize EXISTS forms and re-parse
//	  -> on failure, segment at top-level WITH and parse fragments
//	compatibility checks (textual always; AST only on a whole-query parse)
//	pattern extraction -> variable-label resolution -> schema rules
//
// The first failing stage short-circuits and the call returns exactly one
// ValidationError kind: *SyntaxError, *CompatibilityError, or *SchemaError.
// Validation never panics on malformed input.
//
// A Validator is safe for concurrent use: the schema is immutable, parser
// state is allocated per call, and the optional cache is synchronized.
package validator

import (
	"log/slog"
	"strings"
	"time"

	"github.com/reasy/ariadne/pkg/cypher"
	"github.com/reasy/ariadne/pkg/schema"
)

// Validator validates Cypher queries against a graph schema.
type Validator struct {
	schema *schema.Schema
	logger *slog.Logger
	cache  *resultCache
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the structured logger used for fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithCache enables an in-memory LRU cache of validation outcomes keyed by
// query text. Entries expire after ttl; a ttl of zero never expires. The
// cache is transparent: a hit returns the same value a fresh validation
// would.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(v *Validator) {
		if capacity > 0 {
			v.cache = newResultCache(capacity, ttl)
		}
	}
}

// New creates a Validator for the given schema.
func New(s *schema.Schema, opts ...Option) *Validator {
	v := &Validator{schema: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Schema returns the schema the validator was constructed with.
func (v *Validator) Schema() *schema.Schema { return v.schema }

// Validate checks one query. It returns nil when the query is admitted, or
// exactly one of *SyntaxError, *CompatibilityError, *SchemaError.
func (v *Validator) Validate(text string) ValidationError {
	if v.cache != nil {
		if verdict, ok := v.cache.get(text); ok {
			return verdict
		}
	}
	verdict := v.validate(text)
	if v.cache != nil {
		v.cache.put(text, verdict)
	}
	return verdict
}

func (v *Validator) validate(text string) ValidationError {
	usedFallback := false
	var asts []*cypher.Ast

	ast, parseErr := cypher.Parse(text)
	if parseErr == nil {
		asts = []*cypher.Ast{ast}
	} else {
		normalized := normalizeExistsSubqueries(text)
		ast, err := cypher.Parse(normalized)
		if err == nil {
			asts = []*cypher.Ast{ast}
		} else {
			asts = parseWithFallback(normalized)
			if len(asts) == 0 {
				return &SyntaxError{Message: parseErr.Error()}
			}
			usedFallback = true
			v.logger.Warn("cypher parse failed; using fallback segmentation for schema validation",
				"segments", len(asts))
		}
	}

	var wholeTree *cypher.RuleNode
	if !usedFallback {
		wholeTree = asts[0].Tree
	}
	issues := findCompatibilityIssues(text, wholeTree)
	if len(issues) > 0 {
		if usedFallback {
			v.logger.Warn("compatibility checks are partial due to fallback parsing")
		}
		return &CompatibilityError{Issues: issues}
	}

	x := newExtraction()
	for _, a := range asts {
		x.addTree(a.Tree)
	}
	byVariable := x.resolvedLabels()

	var violations []SchemaViolation
	for _, rel := range x.relationships {
		if len(rel.relTypes) == 0 {
			continue
		}
		leftLabels := resolveLabels(rel.left.labels, rel.left.variable, byVariable)
		rightLabels := resolveLabels(rel.right.labels, rel.right.variable, byVariable)
		if len(leftLabels) == 0 || len(rightLabels) == 0 {
			// Unlabeled ends are skipped, not rejected: labels are not
			// inferred from predicates or projections.
			continue
		}
		dir := directionFrom(rel.leftDir, rel.rightDir)
		if isAllowed(v.schema, rel.relTypes, leftLabels, rightLabels, dir) {
			continue
		}
		violations = append(violations, SchemaViolation{
			RelType:      strings.Join(rel.relTypes, "|"),
			LeftLabels:   leftLabels,
			RightLabels:  rightLabels,
			Direction:    dir,
			Snippet:      rel.snippet,
			RulePath:     rel.rulePath,
			AllowedPairs: allowedPairs(v.schema, rel.relTypes),
		})
	}
	if len(violations) > 0 {
		return &SchemaError{Violations: violations}
	}
	v.logger.Debug("cypher admitted", "fallback", usedFallback)
	return nil
}
