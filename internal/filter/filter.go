package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"earnings-scanner/internal/types"
)

// Rules is the eligibility rule set. A rule that is not enabled is a
// no-op; an entry survives only if every enabled rule keeps it.
type Rules struct {
	// UseStaticList keeps only symbols present verbatim in the
	// allow-list file (case-sensitive, exact match).
	UseStaticList bool

	// StaticListPath is the allow-list file, one symbol per line.
	// Defaults to static_stocks.txt.
	StaticListPath string
}

const defaultStaticListPath = "static_stocks.txt"

// Apply returns the subset of entries matching all enabled rules,
// preserving input order. The allow-list is re-read on every call so a
// long-running caller always sees the file's current contents. A
// missing or unreadable allow-list is a configuration failure and is
// propagated: silently treating it as empty would mask misconfiguration.
func Apply(entries []types.EarningsEntry, rules Rules) ([]types.EarningsEntry, error) {
	var allowed map[string]struct{}
	if rules.UseStaticList {
		var err error
		allowed, err = loadStaticList(rules.StaticListPath)
		if err != nil {
			return nil, err
		}
	}

	filtered := make([]types.EarningsEntry, 0, len(entries))
	for _, entry := range entries {
		if rules.UseStaticList {
			if _, ok := allowed[entry.Symbol]; !ok {
				continue
			}
		}
		filtered = append(filtered, entry)
	}
	return filtered, nil
}

// loadStaticList reads the allow-list file into a set. Blank lines are
// skipped; symbols are kept exactly as written.
func loadStaticList(path string) (map[string]struct{}, error) {
	if path == "" {
		path = defaultStaticListPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load static stock list: %w", err)
	}
	defer f.Close()

	symbols := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		symbols[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read static stock list: %w", err)
	}
	return symbols, nil
}
