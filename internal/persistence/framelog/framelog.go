// Package framelog persists one JSONL entry per advanced tick, compressed
// with zstd and rotated hourly. The journal is the ground truth for offline
// replay verification.
package framelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"triocell/internal/sim/session"
)

type jsonlZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func newJSONLZstdWriter(baseDir, prefix string) *jsonlZstdWriter {
	return &jsonlZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *jsonlZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *jsonlZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *jsonlZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *jsonlZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *jsonlZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// FrameLogger writes one entry per advanced tick (compressed).
type FrameLogger struct{ w *jsonlZstdWriter }

func NewFrameLogger(dataDir string) *FrameLogger {
	return &FrameLogger{w: newJSONLZstdWriter(filepath.Join(dataDir, "frames"), "frames")}
}

func (l *FrameLogger) WriteFrame(v session.FrameLogEntry) error { return l.w.Write(v) }
func (l *FrameLogger) Close() error                             { return l.w.Close() }

// ReadRun scans every journal segment under dataDir and returns the entries
// for runID in the order they were written. A reset within a run restarts
// the tick sequence, so ticks are not globally monotonic. Truncated
// trailing segments (process killed mid-write) are tolerated: decoding
// stops at the first broken line.
func ReadRun(dataDir, runID string) ([]session.FrameLogEntry, error) {
	dir := filepath.Join(dataDir, "frames")
	names, err := segmentPaths(dir)
	if err != nil {
		return nil, err
	}

	var out []session.FrameLogEntry
	for _, p := range names {
		entries, err := readSegment(p, runID)
		if err != nil {
			return nil, fmt.Errorf("framelog %s: %w", p, err)
		}
		out = append(out, entries...)
	}
	return out, nil
}

// LastEpoch trims entries to the final monotonic run: everything from the
// last point the tick sequence restarted. This is the portion the index's
// run config describes after resets.
func LastEpoch(entries []session.FrameLogEntry) []session.FrameLogEntry {
	start := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].Tick <= entries[i-1].Tick {
			start = i
		}
	}
	return entries[start:]
}

func segmentPaths(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".jsonl.zst") {
			continue
		}
		names = append(names, filepath.Join(dir, de.Name()))
	}
	sort.Strings(names)
	return names, nil
}

func readSegment(path, runID string) ([]session.FrameLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []session.FrameLogEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e session.FrameLogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			break
		}
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	if err := sc.Err(); err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return out, nil
}
