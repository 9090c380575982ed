package validator

import (
	"regexp"
	"strings"

	"github.com/reasy/ariadne/pkg/cypher"
)

// Segmented-parse fallback. When neither the raw nor the normalized query
// parses, the query is split at top-level WITH boundaries and each segment is
// parsed on its own. A segment is trimmed to its first statement keyword,
// loses any trailing semicolon, and gets " RETURN 1" appended when it neither
// returns nor writes. Segments that still fail to parse are dropped silently;
// an empty result means the original syntax error stands.

var (
	clauseStartPattern = regexp.MustCompile(
		`(?i)\b(OPTIONAL\s+MATCH|MATCH|UNWIND|CALL|CREATE|MERGE|SET|DELETE|DETACH|REMOVE|RETURN)\b`)
	returnKeywordPattern = regexp.MustCompile(`(?i)\bRETURN\b`)
	writeClausePattern   = regexp.MustCompile(`(?i)\b(CREATE|MERGE|SET|DELETE|DETACH|REMOVE)\b`)
)

// parseWithFallback segments normalized text at top-level WITH and parses
// each completed segment independently.
func parseWithFallback(text string) []*cypher.Ast {
	var asts []*cypher.Ast
	for _, segment := range cypher.SplitTopLevel(text, "WITH") {
		trimmed := stripToFirstClause(segment)
		if trimmed == "" {
			continue
		}
		candidate := ensureReturnClause(trimmed)
		ast, err := cypher.Parse(candidate)
		if err != nil {
			continue
		}
		asts = append(asts, ast)
	}
	return asts
}

// stripToFirstClause drops any prefix before the first statement-starting
// keyword. Segments produced by splitting at WITH typically open with
// projection items that are not a parseable statement on their own.
func stripToFirstClause(text string) string {
	loc := clauseStartPattern.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(text[loc[0]:])
}

// ensureReturnClause completes a segment that neither returns nor writes with
// a trivial projection so it parses as a full statement.
func ensureReturnClause(text string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(text), ";")
	if returnKeywordPattern.MatchString(trimmed) {
		return trimmed
	}
	if writeClausePattern.MatchString(trimmed) {
		return trimmed
	}
	return trimmed + " RETURN 1"
}
