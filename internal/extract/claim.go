package extract

import "attestd/internal/domain"

// Nested claim sections; the first key holding a mapping wins, and its fields
// shadow root fields of the same name.
var claimSectionKeys = []string{"claimData", "extracted", "normalized", "data", "fields"}

var (
	amountAliases     = []string{"amount", "amountText", "transferAmount", "paymentAmount"}
	timestampAliases  = []string{"timestamp", "transferTimestamp", "createdAtTs", "paidAt", "time"}
	payerRefAliases   = []string{"payerRef", "payer", "sender", "payerId", "accountHolder", "recipientText"}
	transferIDAliases = []string{"transferId", "paymentId", "transactionId", "transactionNumber", "transactionNo", "transaction_number", "id", "reference"}
	sourceHostAliases = []string{"sourceHost", "host", "domain", "originHost", "server_name"}
)

// MergeClaimSection flattens the first nested claim section into a copy of
// the raw bag, with section fields taking precedence.
func MergeClaimSection(raw map[string]any) map[string]any {
	merged := make(map[string]any, len(raw))
	for k, v := range raw {
		merged[k] = v
	}
	for _, key := range claimSectionKeys {
		section, ok := mapping(raw[key])
		if !ok {
			continue
		}
		for k, v := range section {
			merged[k] = v
		}
		break
	}
	return merged
}

// NormalizeVerifierData extracts the canonical claim fields from a raw field
// bag under their historical aliases. It never fails; absent fields stay at
// their zero values and presence is checked by the policy validator.
func NormalizeVerifierData(raw map[string]any) domain.NormalizedClaim {
	bag := MergeClaimSection(raw)
	var claim domain.NormalizedClaim
	claim.Amount, _ = firstText(bag, amountAliases)
	claim.Timestamp, _ = firstSeconds(bag, timestampAliases)
	claim.PayerRef, _ = firstText(bag, payerRefAliases)
	claim.TransferID, _ = firstText(bag, transferIDAliases)
	claim.SourceHost, _ = firstString(bag, sourceHostAliases)
	return claim
}

// AvailableKeys lists the field names present in the merged bag, sorted, for
// rejection diagnostics. Names only; values are never surfaced.
func AvailableKeys(raw map[string]any) []string {
	return sortedKeys(MergeClaimSection(raw))
}
