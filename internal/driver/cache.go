package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
)

// Current schema version - increment when cachePayload format changes
const tokenCacheSchemaVersion uint16 = 2

// ErrCacheCorrupt is returned by TokenCache.Get when an entry decodes but
// does not describe a valid token stream.
var ErrCacheCorrupt = errors.New("token cache: corrupt entry")

// TokenCache хранит результат лексинга на диске по хэшу содержимого файла.
// Thread-safe for concurrent access.
type TokenCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload - колоночное представление потока токенов.
// Values[i] хранит значение Int или StringID имени, для остальных видов 0.
type cachePayload struct {
	Schema uint16
	Hash   [32]byte

	Kinds  []uint16
	Starts []uint32
	Ends   []uint32
	Values []uint64

	// Names - таблица интернирования в порядке вставки: Names[k] имеет ID k+1.
	Names []string

	// Diags - все диагностики лексера, без учёта MaxDiagnostics.
	Diags []cachedDiag
}

type cachedDiag struct {
	Code     uint16
	Severity uint8
	Start    uint32
	End      uint32
	Message  string
}

// CacheEntry is a token stream restored from the cache.
type CacheEntry struct {
	Tokens      []token.Token
	Interner    *source.Interner
	Diagnostics []diag.Diagnostic
}

// OpenTokenCache opens the cache under $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenTokenCache(app string) (*TokenCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache dir: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return NewTokenCache(filepath.Join(base, app))
}

// NewTokenCache opens a cache rooted at dir, creating it if needed.
func NewTokenCache(dir string) (*TokenCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &TokenCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *TokenCache) Dir() string {
	return c.dir
}

// cacheKey: H(schema || content hash). Смена схемы сама инвалидирует старые записи.
func cacheKey(content [32]byte) [32]byte {
	h := sha256.New()
	var schema [2]byte
	binary.BigEndian.PutUint16(schema[:], tokenCacheSchemaVersion)
	_, _ = h.Write(schema[:])
	_, _ = h.Write(content[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (c *TokenCache) pathFor(content [32]byte) string {
	key := cacheKey(content)
	return filepath.Join(c.dir, "tokens", hex.EncodeToString(key[:])+".mp")
}

// Put serializes a token stream, its intern table and diagnostics.
func (c *TokenCache) Put(hash [32]byte, tokens []token.Token, interner *source.Interner, diags []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	payload := encodePayload(hash, tokens, interner, diags)

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get looks up the entry for a content hash. Spans of restored tokens point
// into file and are checked against its length. A missing entry or one
// written by another schema is a miss; an entry that fails validation yields
// ErrCacheCorrupt.
func (c *TokenCache) Get(hash [32]byte, file *source.File) (*CacheEntry, bool, error) {
	if c == nil || file == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(hash))
	c.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	if payload.Schema != tokenCacheSchemaVersion {
		return nil, false, nil
	}
	if payload.Hash != hash {
		return nil, false, fmt.Errorf("%w: content hash mismatch", ErrCacheCorrupt)
	}
	entry, err := decodePayload(&payload, file.ID, len(file.Content))
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *TokenCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func encodePayload(hash [32]byte, tokens []token.Token, interner *source.Interner, diags []diag.Diagnostic) *cachePayload {
	p := &cachePayload{
		Schema: tokenCacheSchemaVersion,
		Hash:   hash,
		Kinds:  make([]uint16, len(tokens)),
		Starts: make([]uint32, len(tokens)),
		Ends:   make([]uint32, len(tokens)),
		Values: make([]uint64, len(tokens)),
	}
	for i, tok := range tokens {
		p.Kinds[i] = uint16(tok.Kind)
		p.Starts[i] = tok.Span.Start
		p.Ends[i] = tok.Span.End
		switch v := tok.Payload().(type) {
		case token.IntValue:
			p.Values[i] = uint64(v)
		case token.NameValue:
			p.Values[i] = uint64(v)
		}
	}
	if interner != nil {
		p.Names = interner.Snapshot()
	}
	for _, d := range diags {
		p.Diags = append(p.Diags, cachedDiag{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		})
	}
	return p
}

// decodePayload восстанавливает поток токенов. size - длина содержимого файла:
// span за его пределами означает повреждённую запись.
func decodePayload(p *cachePayload, file source.FileID, size int) (*CacheEntry, error) {
	n := len(p.Kinds)
	if len(p.Starts) != n || len(p.Ends) != n || len(p.Values) != n {
		return nil, fmt.Errorf("%w: column lengths differ", ErrCacheCorrupt)
	}

	// имена интернируются заново в исходном порядке, поэтому ID совпадают
	pool := source.NewInterner()
	for k, name := range p.Names {
		if got := pool.Intern(name); int(got) != k+1 {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrCacheCorrupt, name)
		}
	}

	tokens := make([]token.Token, n)
	for i := range n {
		kind := token.Kind(p.Kinds[i])
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: invalid kind %d", ErrCacheCorrupt, p.Kinds[i])
		}
		if p.Starts[i] > p.Ends[i] {
			return nil, fmt.Errorf("%w: inverted span at token %d", ErrCacheCorrupt, i)
		}
		if int64(p.Ends[i]) > int64(size) {
			return nil, fmt.Errorf("%w: token %d ends at %d past end of file (%d bytes)", ErrCacheCorrupt, i, p.Ends[i], size)
		}
		if kind == token.EOF && i != n-1 {
			return nil, fmt.Errorf("%w: EOF at token %d of %d", ErrCacheCorrupt, i, n)
		}
		sp := source.Span{File: file, Start: p.Starts[i], End: p.Ends[i]}
		switch kind {
		case token.Int:
			tokens[i] = token.NewInt(sp, p.Values[i])
		case token.Name:
			id := p.Values[i]
			if id == 0 || id > uint64(len(p.Names)) {
				return nil, fmt.Errorf("%w: name handle %d out of range", ErrCacheCorrupt, id)
			}
			tokens[i] = token.NewName(sp, source.StringID(id))
		default:
			tokens[i] = token.New(kind, sp)
		}
	}
	if n == 0 || !tokens[n-1].IsEOF() {
		return nil, fmt.Errorf("%w: stream does not end with EOF", ErrCacheCorrupt)
	}

	var diags []diag.Diagnostic
	for i, d := range p.Diags {
		if d.Start > d.End || int64(d.End) > int64(size) {
			return nil, fmt.Errorf("%w: diagnostic %d span out of range", ErrCacheCorrupt, i)
		}
		if !diag.Severity(d.Severity).Valid() {
			return nil, fmt.Errorf("%w: diagnostic %d has severity %d", ErrCacheCorrupt, i, d.Severity)
		}
		diags = append(diags, diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Message:  d.Message,
			Primary:  source.Span{File: file, Start: d.Start, End: d.End},
		})
	}

	return &CacheEntry{Tokens: tokens, Interner: pool, Diagnostics: diags}, nil
}
