// Package prof wires Go's CPU, heap and execution-trace profilers to files.
// It exists to profile large "perltoolbox check" runs.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Config names the output file of each profile. Empty paths are skipped.
type Config struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profile was requested.
func (c Config) Enabled() bool {
	return c.CPU != "" || c.Heap != "" || c.Trace != ""
}

// Start begins the CPU profile and execution trace. The returned stop ends
// them and writes the heap profile; it is safe to call more than once.
func Start(cfg Config) (stop func() error, err error) {
	var cpuFile, traceFile *os.File
	if cfg.CPU != "" {
		if cpuFile, err = create(cfg.CPU); err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			_ = cpuFile.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
	}
	if cfg.Trace != "" {
		if traceFile, err = create(cfg.Trace); err == nil {
			if err = trace.Start(traceFile); err != nil {
				_ = traceFile.Close()
				err = fmt.Errorf("start trace: %w", err)
			}
		}
		if err != nil {
			if cpuFile != nil {
				pprof.StopCPUProfile()
				_ = cpuFile.Close()
			}
			return nil, err
		}
	}

	stopped := false
	stop = func() error {
		if stopped {
			return nil
		}
		stopped = true
		var errs []error
		if traceFile != nil {
			trace.Stop()
			errs = append(errs, traceFile.Close())
		}
		if cpuFile != nil {
			pprof.StopCPUProfile()
			errs = append(errs, cpuFile.Close())
		}
		if cfg.Heap != "" {
			errs = append(errs, WriteHeap(cfg.Heap))
		}
		return errors.Join(errs...)
	}
	return stop, nil
}

// WriteHeap captures a heap profile after a forced GC.
func WriteHeap(path string) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}

func create(path string) (*os.File, error) {
	// #nosec G304 -- profile paths come from command-line flags
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return f, nil
}
