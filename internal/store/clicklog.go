package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/linkveil/linkveil/internal/model"
)

// ClickLog is a true append-only click store. Each append writes exactly one
// row to a file opened with O_APPEND; appends are serialized by a mutex so
// concurrent redirects within the process cannot interleave or lose rows.
type ClickLog struct {
	path string
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
}

// OpenClickLog opens (or creates) the append-only click log at path.
// A header row is written when the file is new.
func OpenClickLog(path string) (*ClickLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open click log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat click log: %w", err)
	}

	l := &ClickLog{path: path, f: f, w: csv.NewWriter(f)}

	if info.Size() == 0 {
		if err := l.writeRow(clickHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write click log header: %w", err)
		}
	}

	return l, nil
}

// AppendClick appends one event row and syncs it to disk.
func (l *ClickLog) AppendClick(ctx context.Context, click *model.ClickEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writeRow(encodeClick(click)); err != nil {
		return fmt.Errorf("append click: %w", err)
	}
	return nil
}

// LoadClicks reads the complete click log through a separate read handle.
func (l *ClickLog) LoadClicks(ctx context.Context) ([]*model.ClickEvent, error) {
	clicks, err := loadClicksFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read click log: %w", err)
	}
	return clicks, nil
}

// Ping checks that the log file is reachable.
func (l *ClickLog) Ping(ctx context.Context) error {
	_, err := os.Stat(l.path)
	return err
}

// Close flushes and closes the log file.
func (l *ClickLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

func (l *ClickLog) writeRow(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return err
	}
	return l.f.Sync()
}
