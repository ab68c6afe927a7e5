package driver

// DefaultExt is the source file extension TokenizeDir looks for.
const DefaultExt = ".ql"

const defaultMaxDiagnostics = 100

// Options configures the tokenize entry points. The zero value is usable.
type Options struct {
	// MaxDiagnostics bounds the diagnostics kept per file (default 100).
	MaxDiagnostics int
	// Jobs limits TokenizeDir parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache, when set, is consulted before lexing and filled afterwards.
	Cache *TokenCache
	// Progress receives per-file events from TokenizeDir.
	Progress ProgressSink
	// Ext overrides DefaultExt.
	Ext string
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return defaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

func (o Options) ext() string {
	if o.Ext == "" {
		return DefaultExt
	}
	return o.Ext
}
