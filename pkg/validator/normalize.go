package validator

import (
	"strings"

	"github.com/reasy/ariadne/pkg/cypher"
)

// Pre-parse normalization. When the raw query does not parse, two EXISTS
// forms are rewritten into the subquery form before parsing again:
//
//  1. Pattern-form EXISTS((a)-[:T]->(b)) becomes the subquery form
//     EXISTS { MATCH (a)-[:T]->(b) RETURN 1 }. (The grammar also accepts
//     the pattern form on its own, as a function invocation.)
//  2. Subquery-form EXISTS { ... } without a top-level RETURN, which the
//     grammar rejects, gets " RETURN 1" appended before the closing brace.
//     The rewrite recurses into the body first, so nested EXISTS blocks are
//     normalized inside-out.
//
// Both rewrites are textual and leave byte positions outside the rewritten
// spans untouched. normalizeExistsSubqueries is idempotent: a normalized
// query passes through unchanged.

// normalizeExistsSubqueries applies the EXISTS rewrites in a single
// left-to-right pass, skipping string literals and backticked identifiers.
func normalizeExistsSubqueries(text string) string {
	upper := strings.ToUpper(text)
	var result strings.Builder
	last := 0
	i := 0
	inString := false
	inBacktick := false
	for i < len(text) {
		c := text[i]
		if inString {
			if c == '\'' && i+1 < len(text) && text[i+1] == '\'' {
				i += 2
				continue
			}
			if c == '\'' {
				inString = false
			}
			i++
			continue
		}
		if inBacktick {
			if c == '`' {
				inBacktick = false
			}
			i++
			continue
		}
		if c == '\'' {
			inString = true
			i++
			continue
		}
		if c == '`' {
			inBacktick = true
			i++
			continue
		}
		if strings.HasPrefix(upper[i:], "EXISTS") && cypher.IsWordBoundary(text, i, i+6) {
			j := i + 6
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			if j < len(text) && text[j] == '{' {
				end, ok := cypher.MatchBalanced(text, j, '{', '}')
				if !ok {
					break
				}
				body := text[j+1 : end]
				normalizedBody := normalizeExistsSubqueries(body)
				if !cypher.HasTopLevelKeyword(normalizedBody, "RETURN") {
					normalizedBody = strings.TrimRight(normalizedBody, " \t\r\n")
					if normalizedBody != "" {
						normalizedBody += " "
					}
					normalizedBody += "RETURN 1"
				}
				result.WriteString(text[last:i])
				result.WriteString(text[i:j])
				result.WriteString("{")
				result.WriteString(normalizedBody)
				result.WriteString("}")
				i = end + 1
				last = i
				continue
			}
			if j < len(text) && text[j] == '(' {
				end, ok := cypher.MatchBalanced(text, j, '(', ')')
				if !ok {
					break
				}
				body := strings.TrimSpace(text[j+1 : end])
				if cypher.LooksLikePatternExpression(body) {
					result.WriteString(text[last:i])
					result.WriteString("EXISTS { MATCH ")
					result.WriteString(body)
					result.WriteString(" RETURN 1 }")
					i = end + 1
					last = i
					continue
				}
			}
		}
		i++
	}
	if last < len(text) {
		result.WriteString(text[last:])
	}
	return result.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
