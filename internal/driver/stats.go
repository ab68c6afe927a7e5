package driver

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"quill/internal/source"
)

// Stats aggregates counters over one or more tokenized files.
type Stats struct {
	Files       int
	Failed      int
	Bytes       int
	Tokens      int
	Names       int // размер таблиц интернирования, суммарно
	Fallback    int // токены с kind == значению байта
	Diagnostics int
	CacheHits   int
}

// Add accumulates one file result.
func (s *Stats) Add(r *TokenizeResult) {
	if r == nil {
		return
	}
	s.Files++
	if r.File != nil {
		s.Bytes += len(r.File.Content)
	}
	s.addTokens(r)
	if r.FromCache {
		s.CacheHits++
	}
}

// AddDir accumulates directory results; files that failed to load count as Failed.
func (s *Stats) AddDir(fileSet *source.FileSet, results []TokenizeDirResult) {
	for i := range results {
		r := &results[i]
		if !r.Loaded {
			s.Failed++
			if r.Bag != nil {
				s.Diagnostics += r.Bag.Len()
			}
			continue
		}
		s.Add(r.AsResult(fileSet))
	}
}

func (s *Stats) addTokens(r *TokenizeResult) {
	s.Tokens += len(r.Tokens)
	for _, tok := range r.Tokens {
		if tok.Kind.IsFallback() {
			s.Fallback++
		}
	}
	if r.Interner != nil {
		s.Names += r.Interner.Len()
	}
	if r.Bag != nil {
		s.Diagnostics += r.Bag.Len()
	}
}

// Format renders the summary line with locale-aware digit grouping,
// e.g. "3 files, 12,345 bytes, 4,096 tokens, 210 names, 0 stray bytes, 1 diagnostics".
func (s Stats) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	out := p.Sprintf("%d files, %d bytes, %d tokens, %d names, %d stray bytes, %d diagnostics",
		s.Files, s.Bytes, s.Tokens, s.Names, s.Fallback, s.Diagnostics)
	if s.Failed > 0 {
		out += p.Sprintf(", %d unreadable", s.Failed)
	}
	if s.CacheHits > 0 {
		out += p.Sprintf(", %d from cache", s.CacheHits)
	}
	return out
}
