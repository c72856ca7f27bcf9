package service

import (
	dErrors "walletreg/pkg/domain-errors"
)

// Registry errors. Compare with errors.Is.
var (
	// ErrNotAuthorized is returned when the caller is not the registry owner.
	ErrNotAuthorized = dErrors.New(dErrors.CodeForbidden, "caller is not the registry owner")

	// ErrInvalidRiskScore is returned by VerifyWallet for scores outside [0, 100].
	ErrInvalidRiskScore = dErrors.New(dErrors.CodeValidation, "risk score must be between 0 and 100")

	// ErrWalletAlreadyVerified is part of the registry's error taxonomy but no
	// operation returns it: re-verifying a wallet replaces the stored record.
	ErrWalletAlreadyVerified = dErrors.New(dErrors.CodeConflict, "wallet already verified")

	ErrNotConstructed     = dErrors.New(dErrors.CodeNotFound, "registry has not been constructed")
	ErrAlreadyConstructed = dErrors.New(dErrors.CodeConflict, "registry already constructed by another account")
	ErrMissingCaller      = dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	ErrWalletNotVerified  = dErrors.New(dErrors.CodeNotFound, "wallet is not verified")
	ErrTooManyAddresses   = dErrors.New(dErrors.CodeValidation, "too many addresses in lookup")
)
