package service

import (
	"sort"
	"strings"

	"go-pos-ws/internal/model"
)

// minSharedWordLen is the shortest word FindSimilarStocks treats as meaningful.
const minSharedWordLen = 4

// sortedByName returns a copy of stocks ordered by lower-cased name, then id,
// so matching never depends on storage order.
func sortedByName(stocks []model.Stock) []model.Stock {
	out := make([]model.Stock, len(stocks))
	copy(out, stocks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ResolveStock picks the stock an ingredient name refers to: an exact
// case-insensitive match wins, otherwise the first stock whose name contains
// or is contained in the ingredient name. A blank name resolves to nil.
func ResolveStock(name string, stocks []model.Stock) *model.Stock {
	needle := normalizeName(name)
	if needle == "" {
		return nil
	}

	ordered := sortedByName(stocks)
	for i := range ordered {
		if normalizeName(ordered[i].Name) == needle {
			return &ordered[i]
		}
	}
	for i := range ordered {
		candidate := normalizeName(ordered[i].Name)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &ordered[i]
		}
	}
	return nil
}

// FindSimilarStocks lists stocks loosely related to name, for diagnostics.
// It is never used to choose a stock.
func FindSimilarStocks(name string, stocks []model.Stock) []model.Stock {
	needle := normalizeName(name)
	if needle == "" {
		return nil
	}
	words := significantWords(needle)

	var similar []model.Stock
	for _, s := range sortedByName(stocks) {
		candidate := normalizeName(s.Name)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) || sharesWord(words, candidate) {
			similar = append(similar, s)
		}
	}
	return similar
}

func significantWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		if len(w) >= minSharedWordLen {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharesWord(words map[string]struct{}, candidate string) bool {
	for _, w := range strings.Fields(candidate) {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func stockNames(stocks []model.Stock) []string {
	names := make([]string, 0, len(stocks))
	for _, s := range stocks {
		names = append(names, s.Name)
	}
	return names
}
