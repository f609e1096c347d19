package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"attestd/internal/domain"
)

const (
	// DefaultRecentTransfers is used when the caller does not ask for a count.
	DefaultRecentTransfers = 5
	// MaxRecentTransfers is the hard cap regardless of caller input.
	MaxRecentTransfers = 10
)

var (
	statusAliases   = []string{"status", "state"}
	currencyAliases = []string{"currency", "currencyCode", "sourceCurrency"}
	// Free-text fields probed by the transaction-number fallback.
	descriptionAliases = []string{"description", "recipientText", "title", "note", "text"}
)

var txnNumberPattern = regexp.MustCompile(`(?i)transaction\s*(?:number|id)?\s*#?\s*(\d{6,})`)

// millisecond epochs are larger than this; divide them down to seconds.
const msEpochThreshold = int64(1_000_000_000_000)

var transferDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RecentTransfers recovers a bounded, deduplicated, ordered list of transfer
// records from the attestation payload and the recv transcript. Roots are
// scanned in priority order: attestation-declared fields outrank
// transcript-mined ones, and earlier entries within a body outrank later
// ones. The scan stops as soon as limit records are collected.
func RecentTransfers(attestation map[string]any, transcript string, limit int) []domain.RecentTransfer {
	limit = ClampRecentLimit(limit)

	roots := make([]map[string]any, 0, 8)
	roots = append(roots, mappingOrEmpty(attestation))
	for _, key := range []string{"claimData", "data", "fields"} {
		roots = append(roots, mappingOrEmpty(attestation[key]))
	}
	for _, body := range transcriptBodies(transcript) {
		roots = append(roots, mappingOrEmpty(body))
	}

	out := make([]domain.RecentTransfer, 0, limit)
	seen := make(map[string]bool)
	for rootIdx, root := range roots {
		for arrIdx, arr := range collectArrays(root) {
			for itemIdx, item := range arr {
				record, ok := transferFromItem(item)
				if !ok {
					continue
				}
				key := dedupKey(record, rootIdx, arrIdx, itemIdx)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, record)
				if len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}

// ClampRecentLimit applies the default and the hard 1..10 bound.
func ClampRecentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentTransfers
	}
	if limit > MaxRecentTransfers {
		return MaxRecentTransfers
	}
	return limit
}

func mappingOrEmpty(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// transcriptBodies recovers candidate JSON bodies from raw transcript text by
// three independent heuristics, unioned: blank-line-separated segments that
// look like JSON, the outermost {...} span, and the outermost [...] span.
// Candidates that fail to parse are dropped silently.
func transcriptBodies(transcript string) []any {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}
	var candidates []string
	normalized := strings.ReplaceAll(transcript, "\r\n", "\n")
	for _, segment := range strings.Split(normalized, "\n\n") {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		if trimmed[0] == '{' || trimmed[0] == '[' {
			candidates = append(candidates, trimmed)
		}
	}
	if start, end := strings.Index(transcript, "{"), strings.LastIndex(transcript, "}"); start >= 0 && end > start {
		candidates = append(candidates, transcript[start:end+1])
	}
	if start, end := strings.Index(transcript, "["), strings.LastIndex(transcript, "]"); start >= 0 && end > start {
		candidates = append(candidates, transcript[start:end+1])
	}

	var bodies []any
	for _, candidate := range candidates {
		if parsed, ok := parseJSONContainer(candidate); ok {
			bodies = append(bodies, parsed)
		}
	}
	return bodies
}

// collectArrays flattens every sequence reachable inside the root, depth
// first, including sequences nested in sequences. Mapping keys are walked in
// sorted order so discovery order is reproducible.
func collectArrays(root map[string]any) [][]any {
	var arrays [][]any
	var walk func(node any)
	walk = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			for _, key := range sortedKeys(v) {
				walk(v[key])
			}
		case []any:
			arrays = append(arrays, v)
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(root)
	return arrays
}

func transferFromItem(item any) (domain.RecentTransfer, bool) {
	bag, ok := item.(map[string]any)
	if !ok {
		return domain.RecentTransfer{}, false
	}
	var record domain.RecentTransfer
	record.Amount, _ = firstText(bag, amountAliases)
	record.PayerRef, _ = firstText(bag, payerRefAliases)
	record.TransferID, _ = firstText(bag, transferIDAliases)
	record.Status, _ = firstText(bag, statusAliases)
	record.Currency, _ = firstText(bag, currencyAliases)
	record.Timestamp = itemTimestamp(bag)

	if record.TransferID == "" {
		if text, ok := firstString(bag, descriptionAliases); ok {
			if m := txnNumberPattern.FindStringSubmatch(text); m != nil {
				record.TransferID = m[1]
			}
		}
	}

	if record.Amount == "" && record.TransferID == "" && record.PayerRef == "" {
		return domain.RecentTransfer{}, false
	}
	return record, true
}

// itemTimestamp normalizes per-item timestamps: millisecond epochs are scaled
// down, non-numeric strings are parsed as dates, failures leave it absent.
func itemTimestamp(bag map[string]any) int64 {
	for _, key := range timestampAliases {
		v, ok := bag[key]
		if !ok {
			continue
		}
		if s, isText := v.(string); isText {
			trimmed := strings.TrimSpace(s)
			if trimmed == "" {
				continue
			}
			if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
				if ts, ok := parseTransferDate(trimmed); ok {
					return ts
				}
				continue
			}
		}
		if ts, ok := secondsField(v); ok {
			if ts > msEpochThreshold {
				ts /= 1000
			}
			return ts
		}
	}
	return 0
}

func parseTransferDate(s string) (int64, bool) {
	for _, layout := range transferDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// dedupKey collapses records describing the same transfer. Records with
// neither an id nor a timestamp are salted with their scan position so weak
// records never collide with each other.
func dedupKey(record domain.RecentTransfer, rootIdx, arrIdx, itemIdx int) string {
	key := fmt.Sprintf("%s|%d|%s|%s", record.TransferID, record.Timestamp, record.Amount, record.PayerRef)
	if record.TransferID == "" && record.Timestamp == 0 {
		key += fmt.Sprintf("|pos:%d:%d:%d", rootIdx, arrIdx, itemIdx)
	}
	return key
}
