package domain

import "time"

// Attestation payloads arrive as untrusted, arbitrarily nested JSON with no
// fixed schema. They are handled as plain decoded values (map[string]any,
// []any, string, float64, bool) and probed heuristically.

// VerificationResult is the reduced output of the presentation verifier,
// produced once per request and immutable afterward.
type VerificationResult struct {
	PresentationHex string
	Sent            string
	Recv            string
	ServerName      string
	Timestamp       int64
}

// NormalizedClaim is the canonical five-field record the pipeline exists to
// produce. A zero Timestamp and empty strings mark absent fields; once all
// five are present and validated the claim is the single source of truth for
// hashing and the response.
type NormalizedClaim struct {
	Amount     string `json:"amount"`
	Timestamp  int64  `json:"timestamp"`
	PayerRef   string `json:"payerRef"`
	TransferID string `json:"transferId"`
	SourceHost string `json:"sourceHost"`
}

// ExpectedConstraints is the caller-supplied subset of values to reconcile
// against the normalized claim. Zero values mean "not checked".
type ExpectedConstraints struct {
	Amount     string
	Timestamp  int64
	TransferID string
	PayerRef   string
}

// RecentTransfer is a non-authoritative record mined from the attestation or
// transcript text, offered for caller cross-referencing only.
type RecentTransfer struct {
	Amount     string `json:"amount"`
	Timestamp  int64  `json:"timestamp,omitempty"`
	PayerRef   string `json:"payerRef"`
	TransferID string `json:"transferId"`
	Status     string `json:"status,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// RawVerification is a foreign-owned handle returned by the verification
// collaborator. Fields carries its output as-is; Free, when non-nil, releases
// the handle and must be invoked exactly once.
type RawVerification struct {
	Fields map[string]any
	Free   func()
}

// ReceiptRecord is the audit row written for an accepted claim.
type ReceiptRecord struct {
	WiseReceiptHash string
	SourceHost      string
	TransferID      string
	PayerRef        string
	Amount          string
	ClaimTimestamp  int64
	CreatedAt       time.Time
}
