package csv

import (
	"strconv"
)

// dedupHeader checks that header names are unique. With rename set, the k-th
// occurrence of a name h becomes h_k; a generated name that is already taken
// fails the header.
func dedupHeader(header []string, rename bool, row, line int) ([]string, error) {
	counts := make(map[string]int, len(header))
	for _, h := range header {
		counts[h]++
	}

	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		seen[h]++
		name := h
		if k := seen[h]; k > 1 {
			if !rename {
				return nil, &MalformedError{Row: row, Line: line, Detail: h, Err: ErrDuplicateHeader}
			}
			name = h + "_" + strconv.Itoa(k)
			if counts[name] > 0 || taken[name] {
				return nil, &MalformedError{Row: row, Line: line, Detail: name, Err: ErrHeaderRename}
			}
		}
		taken[name] = true
		out[i] = name
	}
	return out, nil
}
