package driver

import "time"

// Stage describes which step of tokenization a file is in.
type Stage string

const (
	StageLoad  Stage = "load"
	StageCache Stage = "cache"
	StageLex   Stage = "lex"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// ProgressEvent reports a state change of one file. File is empty for
// events that concern the whole run.
type ProgressEvent struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	Tokens  int
}

// ProgressSink receives progress events. Implementations must be safe for
// concurrent use: TokenizeDir calls OnEvent from worker goroutines.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- ProgressEvent
}

func (s ChannelSink) OnEvent(evt ProgressEvent) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(ProgressEvent)

func (f SinkFunc) OnEvent(evt ProgressEvent) { f(evt) }

func emit(sink ProgressSink, evt ProgressEvent) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
