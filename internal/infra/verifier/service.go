package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"attestd/internal/domain"
	"attestd/internal/extract"
)

// Func is the external verification collaborator: it checks a notarized
// presentation against a notary public key and returns its raw,
// dialect-varying output.
type Func func(ctx context.Context, presentationHex, notaryPublicKeyPem string) (*domain.RawVerification, error)

var serverNameAliases = []string{"server_name", "serverName", "sourceHost", "host"}

var timeAliases = []string{"time", "timestamp"}

// Service orchestrates a single presentation verification: extract the
// presentation hex, invoke the collaborator, reduce its raw output to a
// uniform VerificationResult, and release the foreign handle exactly once.
type Service struct {
	Fn Func
}

func (s *Service) Verify(ctx context.Context, attestation map[string]any, notaryPublicKeyPem string) (domain.VerificationResult, error) {
	if s == nil || s.Fn == nil {
		return domain.VerificationResult{}, domain.ErrVerifierUnavailable
	}
	if strings.TrimSpace(notaryPublicKeyPem) == "" {
		return domain.VerificationResult{}, domain.ErrNotaryKeyMissing
	}
	presentationHex, ok := extract.PresentationHex(attestation)
	if !ok {
		return domain.VerificationResult{}, domain.ErrNoPresentation
	}

	raw, err := s.Fn(ctx, presentationHex, notaryPublicKeyPem)
	if err != nil {
		return domain.VerificationResult{}, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	result := domain.VerificationResult{PresentationHex: presentationHex}
	if raw != nil {
		if raw.Free != nil {
			// Foreign-owned handle; release on every exit path.
			defer raw.Free()
		}
		reduce(raw.Fields, &result)
	}
	return result, nil
}

func reduce(fields map[string]any, result *domain.VerificationResult) {
	if fields == nil {
		return
	}
	if sent, ok := fields["sent"].(string); ok {
		result.Sent = sent
	}
	if recv, ok := fields["recv"].(string); ok {
		result.Recv = recv
	}
	for _, key := range serverNameAliases {
		if name, ok := fields[key].(string); ok && strings.TrimSpace(name) != "" {
			result.ServerName = strings.TrimSpace(name)
			break
		}
	}
	result.Timestamp = reduceTimestamp(fields)
}

// reduceTimestamp accepts the collaborator's wide-integer time value or a
// numeric/parsable-string field, truncated to integer seconds.
func reduceTimestamp(fields map[string]any) int64 {
	for _, key := range timeAliases {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if ts, ok := wideSeconds(v); ok {
			return ts
		}
	}
	return 0
}

func wideSeconds(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, t != 0
	case uint64:
		return int64(t), t != 0
	case int:
		return int64(t), t != 0
	case uint32:
		return int64(t), t != 0
	case float64:
		return int64(t), t != 0
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), int64(f) != 0
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return int64(f), int64(f) != 0
	default:
		return 0, false
	}
}
