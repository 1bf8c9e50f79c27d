package statement

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// headerLines is the number of leading lines unconditionally dropped.
// UPI statement exports open with an account-holder block that is never
// transaction data.
const headerLines = 5

// Drop reasons reported in CleanResult.Dropped.
const (
	ReasonHeader  = "header"
	ReasonEmpty   = "empty"
	ReasonKeyword = "keyword"
	ReasonPhone   = "phone"
	ReasonMasked  = "masked"
)

// boilerplateKeywords are case-insensitive substrings that mark a line as
// statement boilerplate or PII rather than transaction text.
var boilerplateKeywords = []string{
	"upi", "statement", "phonepe", "paytm", "gpay", "name", "account", "bank",
	"utr", "transaction id", "ref",
	"credited to", "paid by",
	"page", "system generated", "support", "note:",
}

var (
	// Indian mobile numbers: 10 digits starting with 7, 8 or 9.
	phonePattern = regexp.MustCompile(`\b[789]\d{9}\b`)

	// Masked account/card digits like "XXXX1234" or "**6789".
	maskedPattern = regexp.MustCompile(`[x*]{2,}\d{2,}`)
)

// CleanResult holds the surviving transaction lines and a per-reason
// count of what was removed.
type CleanResult struct {
	Lines   []string
	Dropped map[string]int
}

// Text joins the kept lines back into cleaned statement text.
func (r *CleanResult) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Empty reports whether no transaction text survived cleaning.
func (r *CleanResult) Empty() bool {
	return len(r.Lines) == 0
}

// DroppedTotal returns the total number of removed lines.
func (r *CleanResult) DroppedTotal() int {
	var total int
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Cleaner strips boilerplate and PII lines from extracted statement text.
// Keyword matching runs through a single Aho-Corasick pass per line; only
// the numeric patterns need regular expressions.
type Cleaner struct {
	keywords *ahocorasick.Matcher
}

// NewCleaner builds a cleaner with the default boilerplate patterns.
func NewCleaner() *Cleaner {
	patterns := make([][]byte, len(boilerplateKeywords))
	for i, kw := range boilerplateKeywords {
		patterns[i] = []byte(kw)
	}
	return &Cleaner{keywords: ahocorasick.NewMatcher(patterns)}
}

// Clean filters the extracted lines down to transaction text.
func (c *Cleaner) Clean(lines []string) *CleanResult {
	result := &CleanResult{
		Lines:   make([]string, 0, len(lines)),
		Dropped: make(map[string]int),
	}

	for i, line := range lines {
		line = strings.TrimSpace(line)

		if i < headerLines {
			result.Dropped[ReasonHeader]++
			continue
		}
		if line == "" {
			result.Dropped[ReasonEmpty]++
			continue
		}

		lower := strings.ToLower(line)

		switch {
		case len(c.keywords.Match([]byte(lower))) > 0:
			result.Dropped[ReasonKeyword]++
		case phonePattern.MatchString(lower):
			result.Dropped[ReasonPhone]++
		case maskedPattern.MatchString(lower):
			result.Dropped[ReasonMasked]++
		default:
			result.Lines = append(result.Lines, line)
		}
	}

	return result
}
