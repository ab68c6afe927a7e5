// Package prof wires the Go runtime profilers to quill's --cpu-profile,
// --mem-profile and --runtime-trace flags.
//
// A flag value naming an existing directory gets a quill-named file inside
// it (quill-cpu.pprof, quill-heap.pprof, quill-runtime.trace).
package prof

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
)

const (
	cpuFileName   = "quill-cpu.pprof"
	heapFileName  = "quill-heap.pprof"
	traceFileName = "quill-runtime.trace"
)

// Options names the outputs; an empty field disables that profiler.
type Options struct {
	CPU   string
	Mem   string
	Trace string
}

// Session owns the profilers started by Start.
type Session struct {
	cpu     *os.File
	trace   *os.File
	memPath string
	once    sync.Once
	err     error
}

// Start resolves the output paths and starts the CPU profile and runtime
// trace. The heap profile is written by Stop, after the command's work.
func Start(opts Options) (*Session, error) {
	s := &Session{}
	var err error
	if opts.Mem != "" {
		if s.memPath, err = resolvePath(opts.Mem, heapFileName); err != nil {
			return nil, err
		}
	}
	if opts.CPU != "" {
		if s.cpu, err = create(opts.CPU, cpuFileName); err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(s.cpu); err != nil {
			_ = s.cpu.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
	}
	if opts.Trace != "" {
		if s.trace, err = create(opts.Trace, traceFileName); err != nil {
			s.memPath = ""
			_ = s.Stop()
			return nil, err
		}
		if err := trace.Start(s.trace); err != nil {
			_ = s.trace.Close()
			s.trace = nil
			s.memPath = ""
			_ = s.Stop()
			return nil, fmt.Errorf("start runtime trace: %w", err)
		}
	}
	return s, nil
}

// Stop ends the runtime trace and CPU profile, then writes the heap profile.
// Later calls return the first call's result.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		var errs []error
		if s.trace != nil {
			trace.Stop()
			errs = append(errs, s.trace.Close())
		}
		if s.cpu != nil {
			pprof.StopCPUProfile()
			errs = append(errs, s.cpu.Close())
		}
		if s.memPath != "" {
			errs = append(errs, writeHeap(s.memPath))
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("heap profile: %w", err)
	}
	return f.Close()
}

func create(path, name string) (*os.File, error) {
	resolved, err := resolvePath(path, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(resolved)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", resolved, err)
	}
	return f, nil
}

// resolvePath: каталог -> файл quill внутри него, иначе путь как есть.
func resolvePath(path, name string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(path, name), nil
	case err == nil || errors.Is(err, os.ErrNotExist):
		return path, nil
	default:
		return "", fmt.Errorf("profile output %s: %w", path, err)
	}
}
