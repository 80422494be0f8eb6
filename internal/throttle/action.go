package throttle

// ActionKind is what the batch executor should do after a failed item.
type ActionKind int

const (
	Continue ActionKind = iota // item succeeded or failure already handled
	Skip                       // skip this item, keep the batch running
	Abort                      // stop the whole batch
)

// Action is the tagged batch-level decision for a failure.
type Action struct {
	Kind   ActionKind
	Reason string
}

// Decide converts a classification into the batch-level action per policy:
// quota exhaustion and unknown failures abort the batch; item-level input
// failures (not found, permission, invalid request) skip the item; retryable
// categories reaching this point have exhausted their retries and skip too,
// leaving the consecutive-failure ceiling to the executor.
func Decide(c Classification) Action {
	switch c.Category {
	case QuotaExceeded:
		return Action{Kind: Abort, Reason: "daily quota exhausted; resume after the quota window resets"}
	case Unknown:
		return Action{Kind: Abort, Reason: "unclassified error: " + c.Message}
	case NotFound, PermissionDenied, InvalidRequest:
		return Action{Kind: Skip, Reason: c.UserAction}
	case RateLimited, ServerError, NetworkError:
		return Action{Kind: Skip, Reason: "retries exhausted: " + c.Message}
	default:
		return Action{Kind: Abort, Reason: "unclassified error"}
	}
}
