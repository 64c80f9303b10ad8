package board

import "fmt"

// Decision is the outcome of comparing the desired schedule against the
// observed channel state.
type Decision struct {
	Rebuild bool
	Reason  string
}

// Decide returns a no-op only when the channel already shows exactly the
// desired sequence: header present, nothing unrecognized, and observed keys
// equal to desired keys element-wise in order. Everything else rebuilds,
// which also heals foreign messages, duplicates and partial failures left by
// earlier cycles. There is no in-place patching of individual messages.
func Decide(desired []string, st *State) Decision {
	if st.Header == nil {
		return Decision{Rebuild: true, Reason: "header missing"}
	}
	if n := len(st.Foreign); n > 0 {
		return Decision{Rebuild: true, Reason: fmt.Sprintf("%d unrecognized messages", n)}
	}
	observed := st.Keys()
	if len(observed) != len(desired) {
		return Decision{Rebuild: true, Reason: fmt.Sprintf("%d posted, %d desired", len(observed), len(desired))}
	}
	for i := range desired {
		if observed[i] != desired[i] {
			return Decision{Rebuild: true, Reason: fmt.Sprintf("key mismatch at position %d", i)}
		}
	}
	return Decision{}
}
