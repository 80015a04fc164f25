// Package diagnostics collects labelled developer diagnostics during one
// resolution and writes them out as response headers in insertion order.
package diagnostics

import "strconv"

// Prefix marks every diagnostic header.
const Prefix = "X-Debug-Cache-Control-"

// HeaderWriter receives flushed diagnostics. http.Header satisfies it.
type HeaderWriter interface {
	Add(key, value string)
}

// Entry is one recorded diagnostic.
type Entry struct {
	Key   string
	Value string
}

// Header returns the header name the entry is written under.
func (e Entry) Header() string {
	return Prefix + e.Key
}

// Sink accumulates entries for a single request. It is not safe for
// concurrent use; each request gets its own Sink.
type Sink struct {
	out     HeaderWriter
	entries []Entry
	index   map[string]int
}

// NewSink returns a sink that flushes into out. out may be nil, in which case
// entries are recorded but never written.
func NewSink(out HeaderWriter) *Sink {
	return &Sink{out: out, index: make(map[string]int)}
}

// Add records key. Adding an existing key replaces its value and keeps its position.
func (s *Sink) Add(key, value string) {
	if s == nil {
		return
	}
	if i, ok := s.index[key]; ok {
		s.entries[i].Value = value
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, Entry{Key: key, Value: value})
}

// AddInt records an integer value.
func (s *Sink) AddInt(key string, value int) {
	s.Add(key, strconv.Itoa(value))
}

// AddBool records a flag as "yes" or "no".
func (s *Sink) AddBool(key string, value bool) {
	if value {
		s.Add(key, "yes")
		return
	}
	s.Add(key, "no")
}

// Entries returns a copy of the recorded entries in insertion order.
func (s *Sink) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of recorded entries.
func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Flush writes every entry as a header when enabled and then discards them.
// It returns the number of headers written.
func (s *Sink) Flush(enabled bool) int {
	if s == nil {
		return 0
	}
	written := 0
	if enabled && s.out != nil {
		for _, e := range s.entries {
			s.out.Add(e.Header(), e.Value)
			written++
		}
	}
	s.entries = nil
	s.index = make(map[string]int)
	return written
}
