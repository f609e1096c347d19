package usecase

import (
	"context"

	"attestd/internal/domain"
)

// NotaryKeyResolver resolves the notary public key for an attestation and
// reports which path produced it ("attestation", "env", "cache", "notary").
type NotaryKeyResolver interface {
	Resolve(ctx context.Context, attestation map[string]any) (pem, source string, err error)
}

// PresentationVerifier runs the external verification collaborator against an
// attestation and reduces its raw output.
type PresentationVerifier interface {
	Verify(ctx context.Context, attestation map[string]any, notaryPublicKeyPem string) (domain.VerificationResult, error)
}
