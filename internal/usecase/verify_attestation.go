package usecase

import (
	"context"
	"fmt"
	"strings"

	"attestd/internal/domain"
	"attestd/internal/extract"
	"attestd/internal/policy"
	"attestd/internal/receipt"
)

type VerifyWiseAttestationRequest struct {
	Attestation      map[string]any
	Expected         domain.ExpectedConstraints
	SelectedTransfer string
	RecentCount      int
}

type VerifierReport struct {
	Status        string   `json:"status"`
	KeySource     string   `json:"keySource,omitempty"`
	AvailableKeys []string `json:"availableKeys"`
}

type VerifyWiseAttestationReceipt struct {
	Verified         bool
	WiseReceiptHash  string
	Claim            domain.NormalizedClaim
	RecentTransfers  []domain.RecentTransfer
	SelectedTransfer *domain.RecentTransfer
	Verifier         VerifierReport
}

// VerifyWiseAttestation is the request pipeline: resolve the notary key,
// verify the presentation, normalize the claim, enforce policy, commit the
// receipt hash, and recover recent transfers. Each stage consumes its
// predecessor; no state survives the request.
type VerifyWiseAttestation struct {
	Keys          NotaryKeyResolver
	Verifier      PresentationVerifier
	Allowed       []string
	RecentDefault int
}

func (uc *VerifyWiseAttestation) Execute(ctx context.Context, req VerifyWiseAttestationRequest) (*VerifyWiseAttestationReceipt, error) {
	attestation := req.Attestation
	if attestation == nil {
		attestation = map[string]any{}
	}

	if uc.Keys == nil {
		return nil, domain.ErrNotaryKeyMissing
	}
	pem, keySource, err := uc.Keys.Resolve(ctx, attestation)
	if err != nil {
		return nil, err
	}

	if uc.Verifier == nil {
		return nil, domain.ErrVerifierUnavailable
	}
	result, err := uc.Verifier.Verify(ctx, attestation, pem)
	if err != nil {
		return nil, err
	}

	bag := buildFieldBag(attestation, result)
	claim := extract.NormalizeVerifierData(bag)
	availableKeys := extract.AvailableKeys(bag)

	if missing := policy.MissingFields(claim); len(missing) > 0 {
		details := make([]string, 0, len(missing))
		for _, field := range missing {
			details = append(details, "missing required field: "+field)
		}
		return nil, &domain.Rejection{Err: domain.ErrClaimIncomplete, Details: details, AvailableKeys: availableKeys}
	}

	allowed := uc.Allowed
	if len(allowed) == 0 {
		allowed = policy.DefaultAllowedDomains
	}
	if !policy.HostAllowed(claim.SourceHost, allowed) {
		detail := fmt.Sprintf("host %q is not in the allowed domains [%s]", claim.SourceHost, strings.Join(allowed, ", "))
		return nil, &domain.Rejection{Err: domain.ErrDomainNotAllowed, Details: []string{detail}, AvailableKeys: availableKeys}
	}

	if details := policy.ValidateExpected(req.Expected, claim); len(details) > 0 {
		return nil, &domain.Rejection{Err: domain.ErrConstraintMismatch, Details: details, AvailableKeys: availableKeys}
	}

	hash, err := receipt.Hash(claim, attestation)
	if err != nil {
		return nil, err
	}

	recentLimit := req.RecentCount
	if recentLimit <= 0 {
		recentLimit = uc.RecentDefault
	}
	recent := extract.RecentTransfers(attestation, result.Recv, recentLimit)

	out := &VerifyWiseAttestationReceipt{
		Verified:        true,
		WiseReceiptHash: hash,
		Claim:           claim,
		RecentTransfers: recent,
		Verifier: VerifierReport{
			Status:        "verified",
			KeySource:     keySource,
			AvailableKeys: availableKeys,
		},
	}

	if selected := strings.TrimSpace(req.SelectedTransfer); selected != "" {
		found := findTransfer(recent, selected)
		if found == nil {
			detail := fmt.Sprintf("transfer %q not found among %d recovered transfers", selected, len(recent))
			return nil, &domain.Rejection{Err: domain.ErrTransferNotFound, Details: []string{detail}, AvailableKeys: availableKeys}
		}
		out.SelectedTransfer = found
	}

	return out, nil
}

// buildFieldBag seeds the bag with verifier-derived fields and overlays the
// attestation root, so attestation-declared values outrank transcript-derived
// ones. Nested claim sections shadow the root during normalization.
func buildFieldBag(attestation map[string]any, result domain.VerificationResult) map[string]any {
	bag := make(map[string]any, len(attestation)+2)
	if result.ServerName != "" {
		bag["server_name"] = result.ServerName
	}
	if result.Timestamp != 0 {
		bag["time"] = result.Timestamp
	}
	for k, v := range attestation {
		bag[k] = v
	}
	return bag
}

func findTransfer(transfers []domain.RecentTransfer, transferID string) *domain.RecentTransfer {
	for i := range transfers {
		if transfers[i].TransferID == transferID {
			return &transfers[i]
		}
	}
	return nil
}
