package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/language"

	"quill/internal/diag"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func sampleTree(t *testing.T) string {
	files := map[string]string{
		"readme.txt": "not a source file",
	}
	for i := range 12 {
		files[fmt.Sprintf("pkg%d/f%02d.ql", i%3, i)] = strings.Repeat(fmt.Sprintf("v%d := v%d << %d\n", i, i+1, i), i+1)
	}
	return writeTree(t, files)
}

func TestListFiles(t *testing.T) {
	dir := sampleTree(t)
	files, err := ListFiles(dir, DefaultExt)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 12 {
		t.Fatalf("found %d files", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Fatalf("files not sorted: %v", files)
		}
	}
}

// Результат не зависит от числа воркеров.
func TestTokenizeDirDeterministic(t *testing.T) {
	dir := sampleTree(t)

	render := func(jobs int) string {
		fs, results, err := TokenizeDir(context.Background(), dir, Options{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		var sb strings.Builder
		for i := range results {
			r := &results[i]
			fmt.Fprintf(&sb, "%s %d\n", filepath.Base(r.Path), r.FileID)
			for _, tok := range r.Tokens {
				sb.WriteString(tok.String())
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.Join(r.Interner.Snapshot(), ","))
			sb.WriteByte('\n')
			if fs.Get(r.FileID).Path != filepath.ToSlash(r.Path) {
				t.Fatalf("FileID %d does not match %s", r.FileID, r.Path)
			}
		}
		return sb.String()
	}

	want := render(1)
	for _, jobs := range []int{2, 4, 0} {
		if got := render(jobs); got != want {
			t.Fatalf("jobs=%d differs from jobs=1", jobs)
		}
	}
}

func TestTokenizeDirEmpty(t *testing.T) {
	fs, results, err := TokenizeDir(context.Background(), t.TempDir(), Options{})
	if err != nil || len(results) != 0 || fs.Len() != 0 {
		t.Fatalf("empty dir: %v %d %d", err, len(results), fs.Len())
	}
}

func TestTokenizeDirMissing(t *testing.T) {
	if _, _, err := TokenizeDir(context.Background(), filepath.Join(t.TempDir(), "absent"), Options{}); err == nil {
		t.Fatal("missing directory must fail")
	}
}

func TestTokenizeDirLoadError(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ql": "a", "b.ql": "b"})
	// битая символическая ссылка попадает в список, но не читается
	bad := filepath.Join(dir, "c.ql")
	if err := os.Symlink(filepath.Join(dir, "missing-target"), bad); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fs, results, err := TokenizeDir(context.Background(), dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || fs.Len() != 2 {
		t.Fatalf("results=%d files=%d", len(results), fs.Len())
	}
	r := results[2]
	if r.Loaded || r.Tokens != nil {
		t.Fatalf("broken file must not be lexed: %+v", r)
	}
	items := r.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError || items[0].Severity != diag.SevError {
		t.Fatalf("diagnostics = %+v", items)
	}
	if !results[0].Loaded || len(results[0].Tokens) != 2 {
		t.Fatalf("healthy file must still be lexed: %+v", results[0])
	}
}

func TestTokenizeDirProgress(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.ql": "a", "b.ql": "b := 1"})

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	sink := SinkFunc(func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	if _, _, err := TokenizeDir(context.Background(), dir, Options{Progress: sink, Jobs: 2}); err != nil {
		t.Fatal(err)
	}

	perFile := map[string][]Status{}
	tokens := map[string]int{}
	for _, ev := range events {
		base := filepath.Base(ev.File)
		perFile[base] = append(perFile[base], ev.Status)
		if ev.Status == StatusDone {
			tokens[base] = ev.Tokens
		}
	}
	for _, name := range []string{"a.ql", "b.ql"} {
		got := perFile[name]
		if len(got) != 3 || got[0] != StatusQueued || got[1] != StatusWorking || got[2] != StatusDone {
			t.Errorf("%s events = %v", name, got)
		}
	}
	if tokens["a.ql"] != 2 || tokens["b.ql"] != 4 {
		t.Errorf("token counts = %v", tokens)
	}
}

func TestTokenizeDirCanceled(t *testing.T) {
	dir := sampleTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := TokenizeDir(ctx, dir, Options{Jobs: 1}); err == nil {
		t.Fatal("canceled context must be reported")
	}
}

func TestTokenizeDirWithCache(t *testing.T) {
	dir := sampleTree(t)
	c := newCache(t)

	if _, _, err := TokenizeDir(context.Background(), dir, Options{Cache: c, Jobs: 4}); err != nil {
		t.Fatal(err)
	}
	fs, results, err := TokenizeDir(context.Background(), dir, Options{Cache: c, Jobs: 4})
	if err != nil {
		t.Fatal(err)
	}

	var st Stats
	st.AddDir(fs, results)
	if st.CacheHits != 12 || st.Files != 12 {
		t.Fatalf("stats = %+v", st)
	}
	if !strings.Contains(st.Format(language.English), "12 from cache") {
		t.Fatalf("summary = %q", st.Format(language.English))
	}
}
