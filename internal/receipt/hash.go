package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"attestd/internal/domain"
)

// Hash commits a validated claim to its source attestation: an inner sha256
// over the serialized attestation, then an outer sha256 over the inner digest
// pipe-joined with the five canonical claim fields. json.Marshal sorts map
// keys, so the serialization is stable for a given payload.
func Hash(claim domain.NormalizedClaim, attestation map[string]any) (string, error) {
	raw, err := json.Marshal(attestation)
	if err != nil {
		return "", fmt.Errorf("serialize attestation: %w", err)
	}
	inner := sha256.Sum256(raw)
	joined := strings.Join([]string{
		hex.EncodeToString(inner[:]),
		"wise",
		claim.SourceHost,
		claim.TransferID,
		claim.PayerRef,
		claim.Amount,
		strconv.FormatInt(claim.Timestamp, 10),
	}, "|")
	outer := sha256.Sum256([]byte(joined))
	return "0x" + hex.EncodeToString(outer[:]), nil
}
