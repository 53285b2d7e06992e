package model

// FailureKind classifies why a resolution or validation step did not succeed.
type FailureKind string

const (
	// FailureNetwork marks a transient RPC failure; callers may retry with backoff.
	FailureNetwork FailureKind = "network_error"
	// FailureIntegrity marks a runtime bytecode hash mismatch; the pool is untrusted
	// and must never be retried.
	FailureIntegrity FailureKind = "integrity_error"
	// FailureInsufficientSponsorship marks collateral below the safety threshold.
	FailureInsufficientSponsorship FailureKind = "insufficient_sponsorship"
	// FailureBelowMinimumTransfer marks a requested amount under the pool floor.
	FailureBelowMinimumTransfer FailureKind = "below_minimum_transfer"
	// FailureSignatureMismatch marks a derived owner that does not match the signer.
	FailureSignatureMismatch FailureKind = "signature_mismatch"
)

// Failure is carried inside result values so callers can render a
// kind-specific message instead of unwinding through error control flow.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Retryable reports whether the failure may resolve on its own with a retry.
func (f Failure) Retryable() bool {
	return f.Kind == FailureNetwork
}
