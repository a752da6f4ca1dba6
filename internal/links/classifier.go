// Package links discovers and classifies document references in raw text.
package links

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// candidatePattern matches any run of non-space characters starting with an
// http or https scheme. Surrounding markup is trimmed afterwards.
var candidatePattern = regexp.MustCompile(`(?i)https?://[^\s<>"'` + "`" + `]+`)

// bracketCutset is stripped from both ends of a candidate.
const bracketCutset = "()[]{}<>"

// trailingCutset is sentence punctuation stripped from the end of a candidate.
const trailingCutset = ".,;:!?'\"*_"

// Extract returns the distinct classified links found in text.
// The result is ordered by URL. Text without references yields an empty slice.
func Extract(text string) []domain.Link {
	seen := make(map[string]domain.Category)
	for _, raw := range candidatePattern.FindAllString(text, -1) {
		for _, candidate := range splitMarkdown(raw) {
			link, ok := Classify(candidate)
			if !ok {
				continue
			}
			seen[link.URL] = link.Category
		}
	}

	result := make([]domain.Link, 0, len(seen))
	for u, c := range seen {
		result = append(result, domain.Link{URL: u, Category: c})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].URL < result[j].URL
	})
	return result
}

// Classify normalises a single candidate URL and assigns its category.
// Returns false when the candidate is not a document reference.
func Classify(candidate string) (domain.Link, bool) {
	normalised, u, ok := normalise(candidate)
	if !ok {
		return domain.Link{}, false
	}

	host := strings.TrimPrefix(u.Host, "www.")
	if host == "arxiv.org" {
		switch {
		case strings.HasPrefix(u.Path, "/pdf/") && len(u.Path) > len("/pdf/"):
			return domain.Link{URL: normalised, Category: domain.CategoryArxivPDF}, true
		case strings.HasPrefix(u.Path, "/abs/") && len(u.Path) > len("/abs/"):
			return domain.Link{URL: normalised, Category: domain.CategoryArxivAbstract}, true
		}
	}

	if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return domain.Link{URL: normalised, Category: domain.CategoryGenericPDF}, true
	}

	return domain.Link{}, false
}

// Partition groups links by category. Every category is present in the
// result, possibly with an empty slice.
func Partition(links []domain.Link) map[domain.Category][]domain.Link {
	groups := make(map[domain.Category][]domain.Link, len(domain.AllCategories))
	for _, c := range domain.AllCategories {
		groups[c] = []domain.Link{}
	}
	for _, l := range links {
		groups[l.Category] = append(groups[l.Category], l)
	}
	return groups
}

// Filter keeps only links whose category is enabled.
func Filter(links []domain.Link, enabled []domain.Category) []domain.Link {
	allowed := make(map[domain.Category]bool, len(enabled))
	for _, c := range enabled {
		allowed[c] = true
	}
	result := make([]domain.Link, 0, len(links))
	for _, l := range links {
		if allowed[l.Category] {
			result = append(result, l)
		}
	}
	return result
}

// splitMarkdown separates a markdown link written as [url](url), which the
// candidate pattern captures as one run.
func splitMarkdown(raw string) []string {
	if !strings.Contains(raw, "](") {
		return []string{raw}
	}
	return strings.Split(raw, "](")
}

// normalise trims surrounding markup and returns the canonical URL string.
func normalise(candidate string) (string, *url.URL, bool) {
	s := candidate
	for {
		trimmed := strings.Trim(s, bracketCutset)
		trimmed = strings.TrimRight(trimmed, trailingCutset)
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if s == "" {
		return "", nil, false
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", nil, false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, false
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), u, true
}
