package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/observ"
	"quill/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file.ql|dir>",
	Short: "Tokenize a quill source file or every source file in a directory",
	Long: `Tokenize breaks quill source into tokens and prints them.
Given a directory, every *.ql file below it is tokenized in parallel.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	f := tokenizeCmd.Flags()
	f.String("format", "pretty", "output format (pretty|json|msgpack)")
	f.Int("jobs", 0, "max parallel files for directories (0 = GOMAXPROCS)")
	f.Bool("cache", false, "reuse token streams cached by content hash")
	f.String("ui", "auto", "progress UI for directories (auto|on|off)")
	f.Bool("stats", false, "print token and intern-table counts")
	f.Bool("spans", false, "show byte spans in pretty output")
	f.String("ext", driver.DefaultExt, "source file extension for directories")
}

// tokenizeSettings - разобранные флаги команды.
type tokenizeSettings struct {
	format     string
	maxDiags   int
	quiet      bool
	stats      bool
	spans      bool
	ui         uiMode
	showTiming bool
	opts       driver.Options
}

func readTokenizeSettings(cmd *cobra.Command) (*tokenizeSettings, error) {
	flags := cmd.Flags()
	s := &tokenizeSettings{}
	var err error

	if s.format, err = flags.GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch s.format {
	case "pretty", "json", "msgpack":
	default:
		return nil, fmt.Errorf("unknown format: %s (expected pretty|json|msgpack)", s.format)
	}
	if s.maxDiags, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.showTiming, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.stats, err = flags.GetBool("stats"); err != nil {
		return nil, fmt.Errorf("failed to get stats flag: %w", err)
	}
	if s.spans, err = flags.GetBool("spans"); err != nil {
		return nil, fmt.Errorf("failed to get spans flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return nil, err
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative")
	}
	ext, err := flags.GetString("ext")
	if err != nil {
		return nil, fmt.Errorf("failed to get ext flag: %w", err)
	}
	useCache, err := flags.GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}

	s.opts = driver.Options{MaxDiagnostics: s.maxDiags, Jobs: jobs, Ext: ext}
	if useCache {
		cache, err := driver.OpenTokenCache("quill")
		if err != nil {
			return nil, fmt.Errorf("failed to open token cache: %w", err)
		}
		s.opts.Cache = cache
	}
	return s, nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	settings, err := readTokenizeSettings(cmd)
	if err != nil {
		return err
	}

	target := args[0]
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}

	var timer *observ.Timer
	if settings.showTiming {
		timer = observ.NewTimer()
	}

	if info.IsDir() {
		err = tokenizeDir(cmd, target, settings, timer)
	} else {
		err = tokenizeFile(cmd, target, settings, timer)
	}

	if timer != nil && !settings.quiet {
		if terr := printTimings(cmd.ErrOrStderr(), timer, settings.format); terr != nil && err == nil {
			err = terr
		}
	}
	if err != nil {
		dumpTraceRing(cmd)
	}
	return err
}

func tokenizeFile(cmd *cobra.Command, path string, s *tokenizeSettings, timer *observ.Timer) error {
	done := track(timer, "lex")
	result, err := driver.Tokenize(cmd.Context(), path, s.opts)
	if err != nil {
		done("failed")
		return fmt.Errorf("tokenization failed: %w", err)
	}
	done(fmt.Sprintf("%d tokens", len(result.Tokens)))

	reportDiagnostics(cmd, result.Bag, result.FileSet, s)

	done = track(timer, "render")
	out := cmd.OutOrStdout()
	switch s.format {
	case "pretty":
		err = diagfmt.FormatTokensPretty(out, result.Tokens, result.File, result.Interner, diagfmt.TokenOpts{
			Color:     useColor(cmd, os.Stdout),
			ShowSpans: s.spans,
		})
	case "json":
		err = diagfmt.FormatTokensJSON(out, result.Tokens, result.File, result.Interner)
	case "msgpack":
		err = diagfmt.FormatTokensMsgpack(out, result.Tokens, result.File, result.Interner)
	}
	done("")
	if err != nil {
		return err
	}

	if s.stats && !s.quiet {
		var st driver.Stats
		st.Add(result)
		fmt.Fprintln(cmd.ErrOrStderr(), st.Format(language.English))
	}
	if result.Bag.HasErrors() {
		return errors.New("tokenize: errors reported")
	}
	return nil
}

func tokenizeDir(cmd *cobra.Command, dir string, s *tokenizeSettings, timer *observ.Timer) error {
	ctx := cmd.Context()

	done := track(timer, "lex")
	var (
		fileSet *source.FileSet
		results []driver.TokenizeDirResult
		err     error
	)
	if shouldUseTUI(s.ui, s.quiet) {
		files, listErr := driver.ListFiles(dir, s.opts.Ext)
		if listErr != nil {
			done("failed")
			return fmt.Errorf("tokenization failed: %w", listErr)
		}
		fileSet, results, err = runTokenizeDirWithUI(ctx, dir, files, s.opts)
	} else {
		fileSet, results, err = driver.TokenizeDir(ctx, dir, s.opts)
	}
	if err != nil {
		done("failed")
		return fmt.Errorf("tokenization failed: %w", err)
	}
	done(fmt.Sprintf("%d files", len(results)))

	failed := 0
	for i := range results {
		r := &results[i]
		reportDiagnostics(cmd, r.Bag, fileSet, s)
		if r.Bag != nil && r.Bag.HasErrors() {
			failed++
		}
	}

	done = track(timer, "render")
	err = renderDir(cmd, cmd.OutOrStdout(), fileSet, results, s)
	done("")
	if err != nil {
		return err
	}

	if s.stats && !s.quiet {
		var st driver.Stats
		st.AddDir(fileSet, results)
		fmt.Fprintln(cmd.ErrOrStderr(), st.Format(language.English))
	}
	if failed > 0 {
		return fmt.Errorf("tokenize: %d of %d files had errors", failed, len(results))
	}
	return nil
}

func renderDir(cmd *cobra.Command, out io.Writer, fileSet *source.FileSet, results []driver.TokenizeDirResult, s *tokenizeSettings) error {
	if s.format == "pretty" {
		opts := diagfmt.TokenOpts{Color: useColor(cmd, os.Stdout), ShowSpans: s.spans}
		for i := range results {
			r := &results[i]
			if !r.Loaded {
				continue
			}
			if _, err := fmt.Fprintf(out, "== %s ==\n", r.Path); err != nil {
				return err
			}
			if err := diagfmt.FormatTokensPretty(out, r.Tokens, fileSet.Get(r.FileID), r.Interner, opts); err != nil {
				return err
			}
		}
		return nil
	}

	files := make([]diagfmt.TokenFile, 0, len(results))
	for i := range results {
		r := &results[i]
		tf := diagfmt.TokenFile{Path: r.Path, Tokens: []diagfmt.TokenOutput{}}
		if r.Loaded {
			tf.Tokens = diagfmt.BuildTokenOutputs(r.Tokens, fileSet.Get(r.FileID), r.Interner)
		} else if r.Bag != nil && r.Bag.Len() > 0 {
			tf.Error = r.Bag.Items()[0].Message
		}
		files = append(files, tf)
	}
	if s.format == "msgpack" {
		return diagfmt.FormatTokenFilesMsgpack(out, files)
	}
	return diagfmt.FormatTokenFilesJSON(out, files)
}

// reportDiagnostics печатает диагностики в stderr. В --quiet информационные скрыты.
func reportDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, s *tokenizeSettings) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	if s.quiet {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevWarning })
		if bag.Len() == 0 {
			return
		}
	}
	bag.Sort()
	opts := diagfmt.PrettyOpts{
		Color:     useColor(cmd, os.Stderr),
		Context:   true,
		ShowNotes: true,
		Max:       s.maxDiags,
	}
	if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, opts); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to print diagnostics: %v\n", err)
	}
}

func track(timer *observ.Timer, phase string) func(string) {
	if timer == nil {
		return func(string) {}
	}
	return timer.Track(phase)
}
