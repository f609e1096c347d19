package policy

import (
	"strings"
	"testing"

	"attestd/internal/domain"
)

func completeClaim() domain.NormalizedClaim {
	return domain.NormalizedClaim{
		Amount:     "1000000",
		Timestamp:  1739102400,
		PayerRef:   "payer-a",
		TransferID: "tx-1",
		SourceHost: "wise.com",
	}
}

func TestMissingFields(t *testing.T) {
	if missing := MissingFields(completeClaim()); len(missing) != 0 {
		t.Fatalf("complete claim reported missing: %v", missing)
	}

	claim := completeClaim()
	claim.PayerRef = "   "
	claim.Timestamp = 0
	missing := MissingFields(claim)
	if len(missing) != 2 || missing[0] != "timestamp" || missing[1] != "payerRef" {
		t.Fatalf("missing = %v, want [timestamp payerRef]", missing)
	}

	if missing := MissingFields(domain.NormalizedClaim{}); len(missing) != 5 {
		t.Fatalf("empty claim: missing = %v, want all five fields", missing)
	}
}

func TestHostAllowed(t *testing.T) {
	allowed := DefaultAllowedDomains
	cases := []struct {
		host string
		want bool
	}{
		{"wise.com", true},
		{"WISE.COM", true},
		{"  wise.com  ", true},
		{"api.wise.com", true},
		{"transferwise.com", true},
		{"evilwise.com", false},
		{"wise.com.evil.net", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := HostAllowed(tc.host, allowed); got != tc.want {
			t.Fatalf("HostAllowed(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestValidateExpected_Accepts(t *testing.T) {
	claim := completeClaim()
	expected := domain.ExpectedConstraints{
		Amount:     "1000000",
		Timestamp:  claim.Timestamp + 1800,
		TransferID: "tx-1",
		PayerRef:   "payer-a",
	}
	if details := ValidateExpected(expected, claim); len(details) != 0 {
		t.Fatalf("details = %v, want none", details)
	}
	if details := ValidateExpected(domain.ExpectedConstraints{}, claim); len(details) != 0 {
		t.Fatalf("unset constraints must not check anything, got %v", details)
	}
}

func TestValidateExpected_AmountMismatch(t *testing.T) {
	claim := completeClaim()
	details := ValidateExpected(domain.ExpectedConstraints{Amount: "1000001"}, claim)
	if len(details) != 1 || !strings.Contains(details[0], "amount mismatch") {
		t.Fatalf("details = %v", details)
	}

	// The amount check is digit-only on both sides.
	claim.Amount = "1,000,000"
	if details := ValidateExpected(domain.ExpectedConstraints{Amount: "1000001"}, claim); len(details) != 0 {
		t.Fatalf("non-digit claim amount must be skipped, got %v", details)
	}
	claim.Amount = "1000000"
	if details := ValidateExpected(domain.ExpectedConstraints{Amount: "10.00"}, claim); len(details) != 0 {
		t.Fatalf("non-digit expected amount must be skipped, got %v", details)
	}
}

func TestValidateExpected_TimestampSkew(t *testing.T) {
	claim := completeClaim()
	if details := ValidateExpected(domain.ExpectedConstraints{Timestamp: claim.Timestamp - 1800}, claim); len(details) != 0 {
		t.Fatalf("skew at tolerance must pass, got %v", details)
	}
	details := ValidateExpected(domain.ExpectedConstraints{Timestamp: claim.Timestamp - 1801}, claim)
	if len(details) != 1 || !strings.Contains(details[0], "timestamp mismatch") {
		t.Fatalf("details = %v", details)
	}
}

func TestValidateExpected_Accumulates(t *testing.T) {
	claim := completeClaim()
	expected := domain.ExpectedConstraints{
		Amount:     "999",
		Timestamp:  claim.Timestamp + 7200,
		TransferID: "tx-other",
		PayerRef:   "payer-b",
	}
	details := ValidateExpected(expected, claim)
	if len(details) != 4 {
		t.Fatalf("details = %v, want all four mismatches", details)
	}
}

func TestValidateExpected_EmptyClaimSideSkipsIdentityChecks(t *testing.T) {
	claim := completeClaim()
	claim.TransferID = ""
	claim.PayerRef = " "
	expected := domain.ExpectedConstraints{TransferID: "tx-1", PayerRef: "payer-a"}
	if details := ValidateExpected(expected, claim); len(details) != 0 {
		t.Fatalf("empty claim values must not mismatch, got %v", details)
	}
}
