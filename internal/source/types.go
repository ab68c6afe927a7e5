package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
// Content is owned by the FileSet and must not be mutated while a lexer
// reads from it.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Hash    [32]byte
	Flags   FileFlags
}

// Slice returns the bytes covered by sp, or nil when sp falls outside the
// file.
func (f *File) Slice(sp Span) []byte {
	if sp.Start > sp.End || int(sp.End) > len(f.Content) {
		return nil
	}
	return f.Content[sp.Start:sp.End]
}
