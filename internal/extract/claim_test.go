package extract

import (
	"encoding/json"
	"testing"
)

func TestNormalizeVerifierData_CanonicalKeys(t *testing.T) {
	claim := NormalizeVerifierData(map[string]any{
		"amount":     "1000000",
		"timestamp":  int64(1739102400),
		"payerRef":   "payer-a",
		"transferId": "tx-1",
		"sourceHost": "wise.com",
	})
	if claim.Amount != "1000000" {
		t.Fatalf("amount = %q", claim.Amount)
	}
	if claim.Timestamp != 1739102400 {
		t.Fatalf("timestamp = %d", claim.Timestamp)
	}
	if claim.PayerRef != "payer-a" {
		t.Fatalf("payerRef = %q", claim.PayerRef)
	}
	if claim.TransferID != "tx-1" {
		t.Fatalf("transferId = %q", claim.TransferID)
	}
	if claim.SourceHost != "wise.com" {
		t.Fatalf("sourceHost = %q", claim.SourceHost)
	}
}

func TestNormalizeVerifierData_AliasEquivalence(t *testing.T) {
	cases := []struct {
		name string
		bag  map[string]any
	}{
		{"amount alias", map[string]any{"transferAmount": "42", "timestamp": 1, "payer": "p", "paymentId": "tx", "host": "wise.com"}},
		{"timestamp alias", map[string]any{"amount": "42", "paidAt": 1, "sender": "p", "transactionId": "tx", "domain": "wise.com"}},
		{"snake and legacy", map[string]any{"amountText": "42", "createdAtTs": 1, "accountHolder": "p", "transaction_number": "tx", "server_name": "wise.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claim := NormalizeVerifierData(tc.bag)
			if claim.Amount != "42" || claim.Timestamp != 1 || claim.PayerRef != "p" || claim.TransferID != "tx" || claim.SourceHost != "wise.com" {
				t.Fatalf("unexpected claim: %+v", claim)
			}
		})
	}
}

func TestNormalizeVerifierData_AliasOrder(t *testing.T) {
	claim := NormalizeVerifierData(map[string]any{
		"transferId": "canonical",
		"paymentId":  "secondary",
	})
	if claim.TransferID != "canonical" {
		t.Fatalf("transferId = %q, want canonical", claim.TransferID)
	}
}

func TestNormalizeVerifierData_NumericCoercion(t *testing.T) {
	// Large floats must not surface in scientific notation, and json.Number
	// amounts keep their literal form.
	claim := NormalizeVerifierData(map[string]any{
		"amount":    float64(1000000),
		"timestamp": json.Number("1739102400"),
	})
	if claim.Amount != "1000000" {
		t.Fatalf("amount = %q, want 1000000", claim.Amount)
	}
	if claim.Timestamp != 1739102400 {
		t.Fatalf("timestamp = %d", claim.Timestamp)
	}
}

func TestMergeClaimSection_Shadowing(t *testing.T) {
	merged := MergeClaimSection(map[string]any{
		"amount": "root",
		"claimData": map[string]any{
			"amount":   "section",
			"payerRef": "payer-a",
		},
	})
	if merged["amount"] != "section" {
		t.Fatalf("section should shadow root, got %v", merged["amount"])
	}
	if merged["payerRef"] != "payer-a" {
		t.Fatal("section-only field missing after merge")
	}
}

func TestMergeClaimSection_FirstSectionWins(t *testing.T) {
	merged := MergeClaimSection(map[string]any{
		"claimData": map[string]any{"amount": "first"},
		"data":      map[string]any{"amount": "second"},
	})
	if merged["amount"] != "first" {
		t.Fatalf("claimData should win over data, got %v", merged["amount"])
	}
}

func TestMergeClaimSection_JSONEncodedSection(t *testing.T) {
	merged := MergeClaimSection(map[string]any{
		"extracted": `{"transferId":"tx-9"}`,
	})
	if merged["transferId"] != "tx-9" {
		t.Fatalf("json-encoded section not unwrapped, got %v", merged["transferId"])
	}
}

func TestAvailableKeys_SortedNamesOnly(t *testing.T) {
	keys := AvailableKeys(map[string]any{
		"zeta":      1,
		"amount":    "secret-value",
		"claimData": map[string]any{"payerRef": "p"},
	})
	want := []string{"amount", "claimData", "payerRef", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}
