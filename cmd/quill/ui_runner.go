package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quill/internal/driver"
	"quill/internal/source"
	"quill/internal/ui"
)

type tokenizeDirOutcome struct {
	fileSet *source.FileSet
	results []driver.TokenizeDirResult
	err     error
}

// progressView показывает события, пока канал не закрыт или пользователь не вышел.
type progressView func(ctx context.Context, events <-chan driver.ProgressEvent) error

// runTokenizeDirWithUI tokenizes dir while a Bubble Tea progress view runs on stderr.
func runTokenizeDirWithUI(ctx context.Context, dir string, files []string, opts driver.Options) (*source.FileSet, []driver.TokenizeDirResult, error) {
	view := func(ctx context.Context, events <-chan driver.ProgressEvent) error {
		model := ui.NewProgressModel("tokenize "+dir, files, events)
		program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
		_, err := program.Run()
		return err
	}
	return tokenizeDirWithView(ctx, dir, opts, view)
}

// tokenizeDirWithView запускает TokenizeDir в фоне и отдаёт его события view.
// Когда view вернулся (конец работы, ctrl+c или ошибка UI), оставшиеся события
// дочитываются, а воркеры отменяются: после выхода из UI токенизация не продолжается.
func tokenizeDirWithView(ctx context.Context, dir string, opts driver.Options, view progressView) (*source.FileSet, []driver.TokenizeDirResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.ProgressEvent, 256)
	outcomeCh := make(chan tokenizeDirOutcome, 1)

	go func() {
		o := opts
		o.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.TokenizeDir(ctx, dir, o)
		close(events)
		outcomeCh <- tokenizeDirOutcome{fileSet: fs, results: results, err: err}
	}()

	uiErr := view(ctx, events)

	// если TokenizeDir уже закончил, отмена ни на что не влияет
	cancel()
	for range events {
	}

	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
