package source

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"quill/internal/buf"
)

// StringID is the canonical handle for interned content. Equal content always
// maps to the same StringID within one Interner.
type StringID uint32

// NoStringID is reserved and never returned by Intern.
const NoStringID StringID = 0

// indexThreshold is the table size after which lookups switch from a linear
// scan to a hash index.
const indexThreshold = 64

type entry struct {
	n uint32 // длина в байтах, сравнивается до содержимого
	s string // собственная копия
}

// Interner maps string content to a single canonical StringID.
//
// Entries are created once per distinct content and never mutated or removed
// individually; Release drops the whole table. An Interner is not safe for
// concurrent use.
type Interner struct {
	entries buf.Buffer[entry]   // entries[0] зарезервирован под NoStringID
	index   map[string]StringID // строится после indexThreshold записей
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	i := &Interner{}
	i.reserve()
	return i
}

func (i *Interner) reserve() {
	if i.entries.Len() == 0 {
		i.entries.Push(entry{})
	}
}

// Intern returns the canonical ID for s, copying s into the table on first use.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.lookup(s); ok {
		return id
	}
	return i.insert(strings.Clone(s))
}

// InternBytes is Intern for a byte range, typically a lexeme sliced straight
// out of a source buffer. The bytes are copied only when the content is new.
func (i *Interner) InternBytes(b []byte) StringID {
	if id, ok := i.lookupBytes(b); ok {
		return id
	}
	return i.insert(string(b))
}

func (i *Interner) lookup(s string) (StringID, bool) {
	if i.index != nil {
		id, ok := i.index[s]
		return id, ok
	}
	n := len(s)
	for idx, e := range i.entries.All() {
		if idx == 0 {
			continue
		}
		if int(e.n) == n && e.s == s {
			return StringID(idx), true
		}
	}
	return NoStringID, false
}

func (i *Interner) lookupBytes(b []byte) (StringID, bool) {
	if i.index != nil {
		id, ok := i.index[string(b)]
		return id, ok
	}
	n := len(b)
	for idx, e := range i.entries.All() {
		if idx == 0 {
			continue
		}
		if int(e.n) == n && e.s == string(b) {
			return StringID(idx), true
		}
	}
	return NoStringID, false
}

func (i *Interner) insert(owned string) StringID {
	i.reserve()
	n, err := safecast.Conv[uint32](len(owned))
	if err != nil {
		panic(fmt.Errorf("interned string too long: %w", err))
	}
	raw, err := safecast.Conv[uint32](i.entries.Len())
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id := StringID(raw)
	i.entries.Push(entry{n: n, s: owned})

	switch {
	case i.index != nil:
		i.index[owned] = id
	case i.Len() > indexThreshold:
		i.buildIndex()
	}
	return id
}

func (i *Interner) buildIndex() {
	i.index = make(map[string]StringID, i.entries.Cap())
	for idx, e := range i.entries.All() {
		if idx == 0 {
			continue
		}
		i.index[e.s] = StringID(idx) // #nosec G115 -- idx bounded by insert
	}
}

// Lookup возвращает строку по ID.
// Если ID не валиден, возвращает пустую строку и false.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.entries.At(int(id)).s, true
}

// MustLookup возвращает строку по ID.
// Если ID не валиден, паникует.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string ID %d", id))
	}
	return s
}

// Has reports whether id resolves in this Interner. NoStringID always does,
// to the empty string.
func (i *Interner) Has(id StringID) bool {
	return int(id) < i.entries.Len()
}

// Len returns the number of distinct strings interned.
func (i *Interner) Len() int {
	return max(0, i.entries.Len()-1)
}

// Indexed reports whether lookups currently go through the hash index.
func (i *Interner) Indexed() bool {
	return i.index != nil
}

// Snapshot returns the interned strings in insertion order; Snapshot()[k]
// has StringID k+1.
func (i *Interner) Snapshot() []string {
	out := make([]string, 0, i.Len())
	for idx, e := range i.entries.All() {
		if idx == 0 {
			continue
		}
		out = append(out, e.s)
	}
	return out
}

// Release drops every entry at once. IDs issued before the call become
// invalid; the Interner itself may be reused. Releasing twice is a no-op.
func (i *Interner) Release() {
	i.entries.Release()
	i.index = nil
	i.reserve()
}
