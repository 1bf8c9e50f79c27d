package charts

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// mergeDistance is the maximum edit distance at which two merchant names
// are considered the same entity.
const mergeDistance = 2

// MergeTopMerchants groups merchant rows whose names are variations of the
// same entity ("ZOMATO", "Zomato Ltd", "ZOMATO 001") and sums their amounts.
// The result is sorted by amount descending.
func MergeTopMerchants(rows []MerchantAmount) []MerchantAmount {
	merged := make([]MerchantAmount, 0, len(rows))

	for _, row := range rows {
		name := strings.TrimSpace(row.Merchant)
		if name == "" {
			continue
		}

		idx := -1
		for i, existing := range merged {
			if sameMerchant(existing.Merchant, name) {
				idx = i
				break
			}
		}

		if idx == -1 {
			merged = append(merged, MerchantAmount{Merchant: name, Amount: row.Amount})
			continue
		}

		merged[idx].Amount += row.Amount
		// Prefer the base name when one is the other plus a suffix
		// ("ZOMATO 001" vs "ZOMATO"); typo variants never displace it.
		if len(name) < len(merged[idx].Merchant) &&
			strings.Contains(strings.ToUpper(merged[idx].Merchant), strings.ToUpper(name)) {
			merged[idx].Merchant = name
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Amount > merged[j].Amount
	})

	return merged
}

// sameMerchant reports whether two merchant names refer to the same entity:
// equal after normalization, one contains the other, or within a small
// Levenshtein distance for names long enough to avoid false positives.
func sameMerchant(a, b string) bool {
	na := strings.ToUpper(strings.TrimSpace(a))
	nb := strings.ToUpper(strings.TrimSpace(b))

	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	if len(na) >= 5 && len(nb) >= 5 {
		return fuzzy.LevenshteinDistance(na, nb) <= mergeDistance
	}
	return false
}
