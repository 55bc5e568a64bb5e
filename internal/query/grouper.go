// Package query turns a topic's keyword list into optimized search queries.
package query

import "strings"

// GroupKeywords batches keywords into OR-grouped query strings of the form
// ("kw1" OR "kw2" OR ...). Each batch holds at most batchSize keywords;
// leftovers form a final shorter batch. An empty keyword list yields no
// batches.
func GroupKeywords(keywords []string, batchSize int) []string {
	if batchSize <= 0 {
		batchSize = 10
	}

	var batches []string
	var parts []string

	for _, keyword := range keywords {
		parts = append(parts, `"`+keyword+`"`)
		if len(parts) == batchSize {
			batches = append(batches, "("+strings.Join(parts, " OR ")+")")
			parts = nil
		}
	}

	if len(parts) > 0 {
		batches = append(batches, "("+strings.Join(parts, " OR ")+")")
	}

	return batches
}
