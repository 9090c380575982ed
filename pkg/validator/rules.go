package validator

import "github.com/reasy/ariadne/pkg/schema"

// directionFrom derives the pattern orientation from the arrow fragments on
// either side of the bracketed relationship detail.
//
//	(<-, ->) -> both
//	(<-, - ) -> right_to_left
//	(- , ->) -> left_to_right
//	(- , - ) -> undirected
func directionFrom(leftDir, rightDir string) Direction {
	switch {
	case leftDir == "<-" && rightDir == "->":
		return DirectionBoth
	case leftDir == "<-":
		return DirectionRightToLeft
	case rightDir == "->":
		return DirectionLeftToRight
	default:
		return DirectionUndirected
	}
}

// isAllowed reports whether any combination of edge-type alternative and
// label pair is permitted by the schema in an orientation compatible with the
// pattern's direction. Undirected and bidirectional patterns admit either
// orientation.
func isAllowed(s *schema.Schema, relTypes, leftLabels, rightLabels []string, dir Direction) bool {
	for _, relType := range relTypes {
		if dir == DirectionLeftToRight || dir == DirectionBoth || dir == DirectionUndirected {
			for _, left := range leftLabels {
				for _, right := range rightLabels {
					if s.Allows(relType, left, right) {
						return true
					}
				}
			}
		}
		if dir == DirectionRightToLeft || dir == DirectionBoth || dir == DirectionUndirected {
			for _, left := range leftLabels {
				for _, right := range rightLabels {
					if s.Allows(relType, right, left) {
						return true
					}
				}
			}
		}
	}
	return false
}

// allowedPairs enumerates the schema's declared pairs for the given edge-type
// alternatives, deduplicated, in first-declared order per type.
func allowedPairs(s *schema.Schema, relTypes []string) []schema.Pair {
	var pairs []schema.Pair
	seen := make(map[schema.Pair]struct{})
	for _, relType := range relTypes {
		for _, p := range s.Pairs(relType) {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}
	return pairs
}
