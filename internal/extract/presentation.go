package extract

import "strings"

// maxPresentationDepth bounds recursion on adversarial input.
const maxPresentationDepth = 5

// presentationKeys is the candidate-key priority order; the first non-empty
// hit anywhere wins.
var presentationKeys = []string{
	"presentationHex",
	"presentation_hex",
	"presentation",
	"proof",
	"proofHex",
	"attestationHex",
	"data",
}

// PresentationHex searches an untrusted payload tree for a hex-encoded
// presentation artifact, normalized to lowercase with any 0x prefix stripped.
// Extraction is pure: identical input yields identical output.
func PresentationHex(node any) (string, bool) {
	return presentationHex(node, 0)
}

func presentationHex(node any, depth int) (string, bool) {
	if depth > maxPresentationDepth {
		return "", false
	}
	switch v := node.(type) {
	case string:
		// A hex leaf wins over any structural interpretation.
		if h, ok := normalizeHex(v); ok {
			return h, true
		}
		if parsed, ok := parseJSONContainer(v); ok {
			return presentationHex(parsed, depth+1)
		}
	case map[string]any:
		for _, key := range presentationKeys {
			child, ok := v[key]
			if !ok {
				continue
			}
			if h, ok := presentationHex(child, depth+1); ok {
				return h, true
			}
		}
		if meta, ok := v["meta"].(map[string]any); ok {
			for _, key := range presentationKeys {
				child, ok := meta[key]
				if !ok {
					continue
				}
				if h, ok := presentationHex(child, depth+1); ok {
					return h, true
				}
			}
		}
	}
	return "", false
}

func normalizeHex(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	if trimmed == "" {
		return "", false
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToLower(trimmed), true
}
