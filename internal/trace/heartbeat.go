package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a pass-scoped liveness event every interval while a long
// pass runs. A run of heartbeats with no file spans ending between them
// means a lex worker is stuck on one file.
type Heartbeat struct {
	tracer   Tracer
	pass     string
	parent   uint64
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts emitting "heartbeat:<pass>" events under parent.
// It returns nil (a valid, stoppable value) when tracing is off, the level
// hides pass events, or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration, pass string, parent uint64) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 || !tracer.Level().ShouldEmit(ScopePass) {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		pass:     pass,
		parent:   parent,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)

	start := time.Now()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := uint64(1); ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:     now,
				Seq:      NextSeq(),
				Kind:     KindHeartbeat,
				Scope:    ScopePass,
				ParentID: h.parent,
				GID:      getGoroutineID(),
				Name:     "heartbeat:" + h.pass,
				Detail:   fmt.Sprintf("#%d after %s", beat, now.Sub(start).Round(time.Millisecond)),
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the heartbeat and waits until no more events are emitted.
// Safe to call on nil and more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
