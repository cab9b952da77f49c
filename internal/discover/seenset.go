package discover

import "github.com/ciroautuori/trendscout/internal/normalize"

// seenSet is the per-call dedup state: the static blacklist, the caller's
// exclusions, and every key accepted so far. Discarded when the call
// returns.
type seenSet struct {
	blacklist []string
	ex        map[string]bool
	accepted  map[string]bool
}

func newSeenSet(blacklist, excludedNames []string) *seenSet {
	s := &seenSet{
		blacklist: blacklist,
		ex:        make(map[string]bool, len(excludedNames)),
		accepted:  make(map[string]bool),
	}
	for _, name := range excludedNames {
		if key := normalize.Key(name); key != "" {
			s.ex[key] = true
		}
	}
	return s
}

func (s *seenSet) blacklisted(key string) bool {
	return normalize.Blacklisted(key, s.blacklist)
}

func (s *seenSet) excluded(key string) bool {
	return s.ex[key]
}

// add records an accepted key, reporting false if it was already taken.
func (s *seenSet) add(key string) bool {
	if s.accepted[key] || s.ex[key] {
		return false
	}
	s.accepted[key] = true
	return true
}
