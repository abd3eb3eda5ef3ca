package engine

// RejectionKind classifies rule violations so transports can map them to
// their own status codes without parsing reason strings.
type RejectionKind string

const (
	// KindValidation covers missing or malformed input
	KindValidation RejectionKind = "validation"

	// KindNotFound covers absent rooms, games, or players
	KindNotFound RejectionKind = "not_found"

	// KindConflict covers state conflicts: game already started or
	// finished, position occupied, power move already spent
	KindConflict RejectionKind = "conflict"

	// KindTurn covers moves made out of turn
	KindTurn RejectionKind = "turn"

	// KindRuleViolation covers power moves with an invalid target
	KindRuleViolation RejectionKind = "rule_violation"
)

// Rejection is a structured rule violation. It is returned as an error so
// callers can propagate it with %w, but it is an expected outcome, never a
// fault: the caller is meant to surface Reason verbatim to the offending
// client and carry on.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(kind RejectionKind, reason string) *Rejection {
	return &Rejection{Kind: kind, Reason: reason}
}
