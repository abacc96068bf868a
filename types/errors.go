// Package types holds the wire and state data model shared by the
// certificate processor, stores and RPC façade: accounts, transactions,
// votes, certificates and recovery snapshots.
package types

import "errors"

// Sentinel errors for transaction and recovery validation (spec §7).
// These are returned to RPC callers as structured errors, never
// logged-and-swallowed.
var (
	ErrBadSignature        = errors.New("types: signature does not recover to a valid sender")
	ErrNotInValidatorSet   = errors.New("types: vote signer is not a configured validator")
	ErrPending             = errors.New("types: account already has an in-flight vote at its current nonce")
	ErrNonceMismatch       = errors.New("types: transaction nonce does not match account nonce")
	ErrNotFinalisedPrev    = errors.New("types: prior nonce has not finalised")
	ErrInsufficientBalance = errors.New("types: sender balance is less than amount")
	ErrInvalidRecovery     = errors.New("types: invalid recovery transaction")
	ErrMissingNotarisation = errors.New("types: expected notarisation certificate is absent")
)

// Sub-causes of ErrInvalidRecovery (§7). Validation code wraps one of
// these together with ErrInvalidRecovery in a single fmt.Errorf with two
// %w verbs, so callers can match on either the general or the specific
// error.
var (
	ErrMissingTip            = errors.New("types: recovery data does not decode to a tip transaction")
	ErrTipSenderMismatch     = errors.New("types: tip transaction sender does not match recovery sender")
	ErrTipNotNotarised       = errors.New("types: tip transaction has no notarisation certificate")
	ErrIntermediateNotBottom = errors.New("types: an intermediate nonce lacks a bottom notarisation")
	ErrRecursionTooDeep      = errors.New("types: recovery chain exceeds maximum depth")
)
