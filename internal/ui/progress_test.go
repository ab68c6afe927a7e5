package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"quill/internal/driver"
)

func TestApplyEvents(t *testing.T) {
	files := []string{"a.ql", "b.ql", "c.ql", "d.ql"}
	m := NewProgressModel("tokenize", files, nil).(*progressModel)

	events := []driver.ProgressEvent{
		{File: "a.ql", Stage: driver.StageLex, Status: driver.StatusWorking},
		{File: "a.ql", Stage: driver.StageLex, Status: driver.StatusDone, Tokens: 42},
		{File: "b.ql", Stage: driver.StageCache, Status: driver.StatusDone, Tokens: 7},
		{File: "c.ql", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("boom")},
		{File: "unknown.ql", Stage: driver.StageLex, Status: driver.StatusDone},
	}
	for _, ev := range events {
		m.Update(eventMsg(ev))
	}

	want := []string{"done", "cached", "error", "queued"}
	for i, w := range want {
		if m.items[i].status != w {
			t.Errorf("%s status = %q, want %q", files[i], m.items[i].status, w)
		}
	}
	if m.items[0].tokens != 42 {
		t.Errorf("tokens = %d", m.items[0].tokens)
	}
	if got := m.fraction(); got != 0.75 {
		t.Errorf("fraction = %v", got)
	}

	view := m.View()
	for _, part := range []string{"tokenize", "a.ql", "42 tok", "cached"} {
		if !strings.Contains(view, part) {
			t.Errorf("view missing %q:\n%s", part, view)
		}
	}
}

func TestDoneQuits(t *testing.T) {
	m := NewProgressModel("x", []string{"a.ql"}, nil)
	next, cmd := m.Update(doneMsg{})
	if !next.(*progressModel).done || cmd == nil {
		t.Fatal("doneMsg must finish the model")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("doneMsg must return tea.Quit")
	}
	if !strings.Contains(next.View(), "done: x") {
		t.Fatalf("view = %q", next.View())
	}
}

func TestListenClosedChannel(t *testing.T) {
	ch := make(chan driver.ProgressEvent)
	close(ch)
	m := NewProgressModel("x", nil, ch).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatal("closed channel must produce doneMsg")
	}
	if m.View() != "" {
		t.Fatal("no files, no view")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("very/long/path/file.ql", 10); got != "very..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short.ql", 20); got != "short.ql" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		stage  driver.Stage
		status driver.Status
		want   string
	}{
		{driver.StageLoad, driver.StatusQueued, "queued"},
		{driver.StageLoad, driver.StatusWorking, "loading"},
		{driver.StageLex, driver.StatusWorking, "lexing"},
		{driver.StageLex, driver.StatusDone, "done"},
		{driver.StageCache, driver.StatusDone, "cached"},
		{driver.StageLex, driver.StatusError, "error"},
		{driver.StageLex, driver.Status("weird"), ""},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.stage, tt.status); got != tt.want {
			t.Errorf("statusLabel(%s, %s) = %q, want %q", tt.stage, tt.status, got, tt.want)
		}
	}
}
