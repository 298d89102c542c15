package darksim

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// Recorder receives one call per completed request once its answer has
// traveled all the way back to the originator.
type Recorder interface {
	// RecordCompletion reports the answer type and the number of forward
	// hops the request traveled before it was resolved.
	RecordCompletion(t MessageType, hops int)
}

// NopRecorder is a Recorder that discards everything. It is the default
// when no recorder is configured.
type NopRecorder struct{}

// RecordCompletion implements Recorder.
func (NopRecorder) RecordCompletion(MessageType, int) {}

// FileRecorder appends one line per completed request to a stats file.
type FileRecorder struct {
	f *os.File
	w *bufio.Writer
}

// RunInfo describes a simulation run for the stats file header.
type RunInfo struct {
	OverlaySize       int
	MaxHTL            int
	MaxSwapHTL        int
	ReplicationFactor int
}

// NewFileRecorder opens path for appending and writes a header describing
// the run.
func NewFileRecorder(path string, info RunInfo) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open stats file: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# run %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# overlay size: %d (2^%d)\n", info.OverlaySize, log2(info.OverlaySize))
	fmt.Fprintf(w, "# max htl: %d  max swap htl: %d  replication factor: %d\n",
		info.MaxHTL, info.MaxSwapHTL, info.ReplicationFactor)
	return &FileRecorder{f: f, w: w}, nil
}

// RecordCompletion implements Recorder.
func (r *FileRecorder) RecordCompletion(t MessageType, hops int) {
	fmt.Fprintf(r.w, "%s\t%d\n", t, hops)
}

// Close flushes buffered lines and closes the file.
func (r *FileRecorder) Close() error {
	if err := r.w.Flush(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

func log2(n int) int {
	bits := 0
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}
