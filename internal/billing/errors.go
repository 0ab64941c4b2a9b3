package billing

import "errors"

// Validation errors: the request references something that does not exist or
// carries a value the engine refuses to compute with. No state change.
var (
	ErrPlanNotFound     = errors.New("billing: plan not found")
	ErrPlanInactive     = errors.New("billing: plan is not open for subscription")
	ErrUserNotFound     = errors.New("billing: user not found")
	ErrContractNotFound = errors.New("billing: contract not found")
	ErrPaymentNotFound  = errors.New("billing: payment not found")
	ErrCreditNotFound   = errors.New("billing: credit not found")
	ErrInvalidAmount    = errors.New("billing: monetary amount must not be negative")
)

// Conflict errors: the transition would violate an invariant. No partial
// state change.
var (
	ErrActiveContractExists = errors.New("billing: user already has an active contract")
	ErrNoActiveContract     = errors.New("billing: user has no active contract")
	ErrCreditConsumed       = errors.New("billing: credit already used")
	ErrCreditExpired        = errors.New("billing: credit expired")
	ErrPaymentNotPending    = errors.New("billing: payment is not pending")
)

// Infrastructure errors.
var (
	// ErrContention means the per-user write lock could not be acquired in
	// time. Retryable by the caller with backoff; never a business failure.
	ErrContention = errors.New("billing: concurrent update in progress, retry")

	// ErrIntegrity marks a torn multi-record write. Structurally impossible
	// with transactional stores; if it surfaces, alert, do not retry.
	ErrIntegrity = errors.New("billing: ledger integrity violation")
)

// IsValidation reports whether err is a client-input validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrPlanInactive) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrCreditNotFound) ||
		errors.Is(err, ErrInvalidAmount)
}

// IsConflict reports whether err is an invariant conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrActiveContractExists) ||
		errors.Is(err, ErrNoActiveContract) ||
		errors.Is(err, ErrCreditConsumed) ||
		errors.Is(err, ErrCreditExpired) ||
		errors.Is(err, ErrPaymentNotPending)
}

// IsRetryable reports whether the operation may be retried as-is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
