package domain

// Decision is the outcome of an invariant or deletion check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Reject returns a refusing decision with an actionable reason.
func Reject(reason string) Decision {
	return Decision{Reason: reason}
}
