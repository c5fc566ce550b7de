package segment

import "errors"

var (
	// ErrOccupiedGap is returned by InsertRange when existing segments lie
	// inside the target gap. Use MergeRange instead.
	ErrOccupiedGap = errors.New("segment: insert into occupied region")

	// ErrInconsistentOverlap signals contradictory neighbor searches in
	// MergeRange. It indicates a bug or malformed input, not a caller mistake.
	ErrInconsistentOverlap = errors.New("segment: inconsistent overlap count")

	// ErrOverlappingJoin is returned by JoinTouching when the boundary
	// elements overlap instead of touching.
	ErrOverlappingJoin = errors.New("segment: boundary ranges overlap")
)
