// Package tally aggregates per-document unit counts across a batch of
// converted documents.
package tally

import (
	"fmt"
	"sort"
)

// Reduce sums a slice of per-document unit count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	final := make(map[string]int)
	for _, counts := range intermediate {
		for unit, count := range counts {
			final[unit] += count
		}
	}
	return final
}

// TopUnits returns the units ordered by conversion count, descending,
// formatted as "unit:count" strings, limited to n entries.
func TopUnits(unitCounts map[string]int, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	ss := make([]kv, 0, len(unitCounts))
	for k, v := range unitCounts {
		ss = append(ss, kv{k, v})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if n > len(ss) {
		n = len(ss)
	}
	if n < 0 {
		n = 0
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}
	return out
}

// PrintTopUnits prints the units as a numbered list.
func PrintTopUnits(unitCounts map[string]int, n int) {
	for i, entry := range TopUnits(unitCounts, n) {
		fmt.Printf("%d. %s\n", i+1, entry)
	}
}
