package extract

import (
	"net/url"
	"strings"
)

var notaryKeyAliases = []string{
	"notaryPublicKeyPem",
	"notaryKeyPem",
	"notary_key_pem",
	"notaryPubKeyPem",
	"publicKeyPem",
}

var notaryURLAliases = []string{"notaryUrl", "notary_url", "notary"}

var infoKeyAliases = []string{
	"publicKey",
	"public_key",
	"notaryPublicKeyPem",
	"notary_key_pem",
}

// NotaryPublicKeyPem resolves a notary key from the attestation: root aliases
// first, then the same aliases under meta, then the trimmed fallback string.
func NotaryPublicKeyPem(attestation map[string]any, envFallback string) (string, bool) {
	if pem, ok := firstString(attestation, notaryKeyAliases); ok {
		return pem, true
	}
	if meta, ok := attestation["meta"].(map[string]any); ok {
		if pem, ok := firstString(meta, notaryKeyAliases); ok {
			return pem, true
		}
	}
	if pem := strings.TrimSpace(envFallback); pem != "" {
		return pem, true
	}
	return "", false
}

// NotaryURL resolves the notary service URL, preferring meta over root. The
// trailing slash is stripped so the result is a canonical cache key.
func NotaryURL(attestation map[string]any) (string, bool) {
	if meta, ok := attestation["meta"].(map[string]any); ok {
		if raw, ok := firstString(meta, notaryURLAliases); ok {
			return normalizeNotaryURL(raw)
		}
	}
	if raw, ok := firstString(attestation, notaryURLAliases); ok {
		return normalizeNotaryURL(raw)
	}
	return "", false
}

// PublicKeyFromNotaryInfo pulls a PEM key out of a notary /info response.
func PublicKeyFromNotaryInfo(info map[string]any) (string, bool) {
	return firstString(info, infoKeyAliases)
}

func normalizeNotaryURL(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.TrimSuffix(trimmed, "/"), true
}
