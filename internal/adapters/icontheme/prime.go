package icontheme

import (
	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Prime resolves many names with a single walk over the icon patterns and
// memoises the results, hits and misses alike. Each name gets the same path
// Find would return: the first walked path containing it. Names already
// memoised are left alone. Returns how many names were resolved to a path.
func (f *Finder) Prime(names []string) int {
	f.mu.Lock()
	pending := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := f.memo[n]; !ok {
			pending = append(pending, n)
		}
	}
	f.mu.Unlock()
	if len(pending) == 0 {
		return 0
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{DFA: true})
	automaton := builder.Build(pending)
	hits := make([]string, len(pending))
	remaining := len(pending)

	f.walk(func(full string) bool {
		// Overlapping iteration: "vlc" and "vlc-qt" both match "vlc-qt.png".
		iter := automaton.IterOverlappingByte([]byte(full))
		for m := iter.Next(); m != nil; m = iter.Next() {
			idx := m.Pattern()
			if hits[idx] == "" {
				hits[idx] = full
				remaining--
			}
		}
		return remaining == 0
	})

	found := 0
	f.mu.Lock()
	for i, n := range pending {
		if _, ok := f.memo[n]; ok {
			continue // resolved concurrently by Find
		}
		f.memo[n] = hits[i]
		if hits[i] != "" {
			found++
		}
	}
	f.mu.Unlock()
	return found
}
