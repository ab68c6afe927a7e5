package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"detail", LevelDetail, false},
		{" debug ", LevelDebug, false},
		{"verbose", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeFile) {
		t.Error("phase level must not record per-file events")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeToken) {
		t.Error("detail level records files but not tokens")
	}
	if !LevelDebug.ShouldEmit(ScopeToken) {
		t.Error("debug level records everything")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Error("off records nothing")
	}
}

func TestStreamTracerText(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTracer(&out, LevelDetail, FormatText)

	root := Begin(tr, ScopeDriver, "tokenize", 0)
	file := Begin(tr, ScopeFile, "file:a.ql", root.ID())
	file.WithExtra("tokens", "12").End("")
	Begin(tr, ScopeToken, "skipped", file.ID()).End("")
	root.End("ok")

	text := out.String()
	for _, want := range []string{"→ tokenize", "  → file:a.ql", "← file:a.ql {tokens=12}", "← tokenize (ok)"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "skipped") {
		t.Errorf("token scope must be filtered at detail level:\n%s", text)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTracer(&out, LevelPhase, FormatNDJSON)
	Point(tr, ScopePass, "cache", "hit", 0)

	line := out.String()
	if !strings.HasSuffix(line, "\n") || !strings.Contains(line, `"kind":"point"`) || !strings.Contains(line, `"detail":"hit"`) {
		t.Fatalf("unexpected ndjson line %q", line)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelPhase)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopePass, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	got := snap[0].Name + snap[1].Name + snap[2].Name
	if got != "cde" {
		t.Fatalf("ring order = %q, want cde", got)
	}

	var out bytes.Buffer
	if err := r.Dump(&out, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(out.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", out.String())
	}
}

func TestMultiTracer(t *testing.T) {
	var out bytes.Buffer
	m := NewMultiTracer(LevelPhase, NewStreamTracer(&out, LevelPhase, FormatText), NewRingTracer(8, LevelPhase))
	Begin(m, ScopePass, "lex", 0).End("")
	if m.Ring() == nil || len(m.Ring().Snapshot()) != 2 {
		t.Fatal("ring child should hold begin and end")
	}
	if strings.Count(out.String(), "lex") != 2 {
		t.Fatalf("stream child output:\n%s", out.String())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
	// спан на выключенном трейсере безопасен
	if d := Begin(tr, ScopeDriver, "x", 0).End(""); d != 0 {
		t.Fatalf("nop span duration = %v", d)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should yield Nop")
	}
	r := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatal("tracer lost in context")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 7})
	if CurrentSpan(ctx).SpanID != 7 {
		t.Fatal("span context lost")
	}
	// замена трейсера не сбрасывает текущий span
	ctx = WithTracer(ctx, Nop)
	if CurrentSpan(ctx).SpanID != 7 || FromContext(ctx) != Nop {
		t.Fatal("WithTracer must keep the span context")
	}
}

func TestHeartbeatLabelsPass(t *testing.T) {
	r := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(r, 5*time.Millisecond, "lex", 42)
	if h == nil {
		t.Fatal("heartbeat should start at phase level")
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(r.Snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	h.Stop()
	h.Stop() // повторный Stop безопасен

	events := r.Snapshot()
	if len(events) < 2 {
		t.Fatalf("got %d heartbeats", len(events))
	}
	for _, ev := range events {
		if ev.Kind != KindHeartbeat || ev.Scope != ScopePass || ev.Name != "heartbeat:lex" || ev.ParentID != 42 {
			t.Fatalf("unexpected heartbeat event %+v", ev)
		}
	}
	if !strings.HasPrefix(events[0].Detail, "#1 after ") {
		t.Fatalf("detail = %q", events[0].Detail)
	}

	// после Stop события не появляются
	n := len(r.Snapshot())
	time.Sleep(20 * time.Millisecond)
	if len(r.Snapshot()) != n {
		t.Fatal("heartbeat emitted after Stop")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond, "lex", 0) != nil {
		t.Error("Nop tracer must not start a heartbeat")
	}
	if StartHeartbeat(NewRingTracer(8, LevelDebug), 0, "lex", 0) != nil {
		t.Error("zero interval disables the heartbeat")
	}
	var h *Heartbeat
	h.Stop()
}
