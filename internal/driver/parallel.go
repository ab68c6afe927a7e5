package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
)

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path      string        // путь к файлу
	FileID    source.FileID // ID файла в FileSet; не валиден, если Loaded == false
	Loaded    bool
	Tokens    []token.Token
	Interner  *source.Interner // свой пул на каждый файл
	Bag       *diag.Bag
	FromCache bool
}

// AsResult views a loaded directory entry as a single-file result.
func (r *TokenizeDirResult) AsResult(fileSet *source.FileSet) *TokenizeResult {
	res := &TokenizeResult{
		FileSet:   fileSet,
		Tokens:    r.Tokens,
		Interner:  r.Interner,
		Bag:       r.Bag,
		FromCache: r.FromCache,
	}
	if r.Loaded {
		res.File = fileSet.Get(r.FileID)
	}
	return res
}

// ListFiles возвращает отсортированный список всех файлов с расширением ext в директории
func ListFiles(dir, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// TokenizeDir токенизирует все исходники в директории параллельно.
// Результаты идут в порядке ListFiles и не зависят от Jobs.
// Ошибка чтения файла не прерывает обход: она становится диагностикой IOLoadFileError.
func TokenizeDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []TokenizeDirResult, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	files, err := ListFiles(dir, opts.ext())
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", dir, err)
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	for _, path := range files {
		emit(opts.Progress, ProgressEvent{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// FileSet не потокобезопасен, поэтому всё читаем заранее
	loadSpan := trace.Begin(tracer, trace.ScopePass, "load", parent)
	results := make([]TokenizeDirResult, len(files))
	for i, path := range files {
		results[i] = TokenizeDirResult{Path: path}
		fileID, err := fileSet.Load(path)
		if err != nil {
			bag := diag.NewBag(opts.maxDiagnostics())
			bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  "failed to load file: " + err.Error(),
			})
			results[i].Bag = bag
			emit(opts.Progress, ProgressEvent{File: path, Stage: StageLoad, Status: StatusError, Err: err})
			continue
		}
		results[i].FileID = fileID
		results[i].Loaded = true
	}
	loadSpan.WithExtra("files", strconv.Itoa(len(files))).End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	lexSpan := trace.Begin(tracer, trace.ScopePass, "lex", parent)
	defer lexSpan.End("")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i := range results {
		if !results[i].Loaded {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := &results[i] // индекс уникален для горутины, мьютекс не нужен
			file := fileSet.Get(r.FileID)

			start := time.Now()
			emit(opts.Progress, ProgressEvent{File: r.Path, Stage: StageLex, Status: StatusWorking})
			fileSpan := trace.Begin(tracer, trace.ScopeFile, "file:"+r.Path, lexSpan.ID())

			res := lexFile(gctx, file, opts, fileSpan.ID())
			r.Tokens = res.Tokens
			r.Interner = res.Interner
			r.Bag = res.Bag
			r.FromCache = res.FromCache

			fileSpan.WithExtra("tokens", strconv.Itoa(len(res.Tokens))).End("")
			stage := StageLex
			if res.FromCache {
				stage = StageCache
			}
			emit(opts.Progress, ProgressEvent{
				File:    r.Path,
				Stage:   stage,
				Status:  StatusDone,
				Elapsed: time.Since(start),
				Tokens:  len(res.Tokens),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
