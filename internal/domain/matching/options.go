package matching

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// TieBreak selects how equal scores are ordered.
type TieBreak int

// Tie-break policies.
const (
	// TieBreakByID orders equal scores by candidate id ascending.
	TieBreakByID TieBreak = iota
	// TieBreakByInsertion keeps the pool's insertion order for equal scores.
	TieBreakByInsertion
)

// WithLimit caps the number of matches returned per learner.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithDayThreshold sets how many shared UTC days earn the custom days point.
// Zero awards the point to every tutor. Negative values are ignored.
func WithDayThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.dayThreshold = n
		}
	}
}

// WithTimeThreshold sets how many shared minutes earn the custom time point.
// Zero awards it whenever the days point is earned.
func WithTimeThreshold(minutes int) Option {
	return func(e *Engine) {
		if minutes >= 0 {
			e.timeThreshold = minutes
		}
	}
}

// WithGPATolerance sets the GPA difference still counted as a match. Zero
// keeps exact equality.
func WithGPATolerance(t float64) Option {
	return func(e *Engine) {
		if t >= 0 {
			e.gpaTolerance = t
		}
	}
}

// WithTieBreak sets the ordering for equal scores.
func WithTieBreak(tb TieBreak) Option {
	return func(e *Engine) {
		e.tieBreak = tb
	}
}

// WithParallelism bounds how many learners GenerateAll scores at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}
