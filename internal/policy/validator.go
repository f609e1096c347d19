package policy

import (
	"fmt"
	"strings"

	"attestd/internal/domain"
)

// SkewToleranceSeconds is the allowed distance between an expected and an
// observed claim timestamp.
const SkewToleranceSeconds = 1800

// DefaultAllowedDomains is the allow-list applied when none is configured.
var DefaultAllowedDomains = []string{"wise.com", "transferwise.com"}

// MissingFields names the canonical claim fields still absent after
// normalization. An empty result means the claim is complete.
func MissingFields(claim domain.NormalizedClaim) []string {
	var missing []string
	if strings.TrimSpace(claim.Amount) == "" {
		missing = append(missing, "amount")
	}
	if claim.Timestamp == 0 {
		missing = append(missing, "timestamp")
	}
	if strings.TrimSpace(claim.PayerRef) == "" {
		missing = append(missing, "payerRef")
	}
	if strings.TrimSpace(claim.TransferID) == "" {
		missing = append(missing, "transferId")
	}
	if strings.TrimSpace(claim.SourceHost) == "" {
		missing = append(missing, "sourceHost")
	}
	return missing
}

// HostAllowed reports whether host equals, or is a dot-separated sub-domain
// of, an allow-list entry. Comparison is case-insensitive and trimmed.
func HostAllowed(host string, allowed []string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	for _, entry := range allowed {
		suffix := strings.ToLower(strings.TrimSpace(entry))
		if suffix == "" {
			continue
		}
		if h == suffix || strings.HasSuffix(h, "."+suffix) {
			return true
		}
	}
	return false
}

// ValidateExpected reconciles the caller-supplied constraints against the
// normalized claim. Every triggered check accumulates into the returned list;
// an empty list means accepted. Unset constraints are not checked.
func ValidateExpected(expected domain.ExpectedConstraints, claim domain.NormalizedClaim) []string {
	var details []string

	// The amount check only fires when both sides are pure-digit unsigned
	// integers; formatting variants ("10.00" vs "10.0") must not produce
	// false mismatches.
	if expected.Amount != "" && isDigits(expected.Amount) && isDigits(claim.Amount) {
		if expected.Amount != claim.Amount {
			details = append(details, fmt.Sprintf("amount mismatch: expected %s, got %s", expected.Amount, claim.Amount))
		}
	}

	if expected.Timestamp != 0 {
		diff := expected.Timestamp - claim.Timestamp
		if diff < 0 {
			diff = -diff
		}
		if diff > SkewToleranceSeconds {
			details = append(details, fmt.Sprintf("timestamp mismatch: expected %d, got %d (tolerance %ds)", expected.Timestamp, claim.Timestamp, SkewToleranceSeconds))
		}
	}

	if want, got := strings.TrimSpace(expected.TransferID), strings.TrimSpace(claim.TransferID); want != "" && got != "" && want != got {
		details = append(details, fmt.Sprintf("transferId mismatch: expected %s, got %s", want, got))
	}
	if want, got := strings.TrimSpace(expected.PayerRef), strings.TrimSpace(claim.PayerRef); want != "" && got != "" && want != got {
		details = append(details, fmt.Sprintf("payerRef mismatch: expected %s, got %s", want, got))
	}
	return details
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
