package domain

import (
	"errors"
	"strings"
)

var (
	ErrNoPresentation      = errors.New("no presentation found in attestation")
	ErrNotaryKeyMissing    = errors.New("notary public key missing")
	ErrVerifierUnavailable = errors.New("presentation verifier unavailable")
	ErrVerificationFailed  = errors.New("presentation verification failed")
	ErrClaimIncomplete     = errors.New("claim incomplete")
	ErrDomainNotAllowed    = errors.New("source host not allowed")
	ErrConstraintMismatch  = errors.New("expected value mismatch")
	ErrTransferNotFound    = errors.New("selected transfer not found")
)

// Rejection is a structured validator rejection. Details holds one
// human-readable string per violation (field names and observed vs expected
// values only, never key material or presentation bytes). AvailableKeys names
// the fields present in the raw bag at rejection time.
type Rejection struct {
	Err           error
	Details       []string
	AvailableKeys []string
}

func (r *Rejection) Error() string {
	if len(r.Details) == 0 {
		return r.Err.Error()
	}
	return r.Err.Error() + ": " + strings.Join(r.Details, "; ")
}

func (r *Rejection) Unwrap() error { return r.Err }
