package tgstat

import "tgscout/internal/channel"

// Session is the state of a single crawl: every record accumulated so far, in discovery
// order, and the set of urls already seen. It is owned by one Run and is not safe for
// concurrent use.
type Session struct {
	records []channel.Record
	seen    map[string]struct{}
}

func NewSession() *Session {
	return &Session{seen: make(map[string]struct{})}
}

// Add appends the records whose url has not been seen yet and returns how many were new.
func (s *Session) Add(records []channel.Record) int {
	added := 0
	for _, r := range records {
		if _, ok := s.seen[r.URL]; ok {
			continue
		}
		s.seen[r.URL] = struct{}{}
		s.records = append(s.records, r)
		added++
	}
	return added
}

func (s *Session) Records() []channel.Record {
	return s.records
}

func (s *Session) Len() int {
	return len(s.records)
}
