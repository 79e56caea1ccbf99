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

const (
	linksFileName  = "links.csv"
	clicksFileName = "clicks.csv"
)

// FileStore persists links and clicks as flat CSV files, one file per entity
// type. Writes rewrite the whole file through a temp-file rename.
//
// AppendClick is a read-modify-write of the entire click log. That is safe
// within one process (guarded by the store mutex) but not across processes;
// deployments with concurrent writers should use ClickLog instead.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// GetLink resolves a link by id or custom alias.
func (s *FileStore) GetLink(ctx context.Context, id string) (*model.Link, error) {
	links, err := s.LoadLinks(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if l.ID == id || (l.Alias != "" && l.Alias == id) {
			return l, nil
		}
	}
	return nil, ErrLinkNotFound
}

// LoadLinks reads the complete link collection.
func (s *FileStore) LoadLinks(ctx context.Context) ([]*model.Link, error) {
	rows, err := readRows(s.linksPath())
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}

	links := make([]*model.Link, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row, linkHeader) {
			continue
		}
		if l, ok := decodeLink(row); ok {
			links = append(links, l)
		}
	}
	return links, nil
}

// SaveLinks rewrites the link file from the complete collection.
func (s *FileStore) SaveLinks(ctx context.Context, links []*model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(links)+1)
	rows = append(rows, linkHeader)
	for _, l := range links {
		rows = append(rows, encodeLink(l))
	}

	if err := writeRows(s.linksPath(), rows); err != nil {
		return fmt.Errorf("write links file: %w", err)
	}
	return nil
}

// AppendClick records one click event by rewriting the whole click file.
func (s *FileStore) AppendClick(ctx context.Context, click *model.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clicks, err := loadClicksFile(s.clicksPath())
	if err != nil {
		return fmt.Errorf("read clicks file: %w", err)
	}

	rows := make([][]string, 0, len(clicks)+2)
	rows = append(rows, clickHeader)
	for _, c := range clicks {
		rows = append(rows, encodeClick(c))
	}
	rows = append(rows, encodeClick(click))

	if err := writeRows(s.clicksPath(), rows); err != nil {
		return fmt.Errorf("write clicks file: %w", err)
	}
	return nil
}

// LoadClicks reads the complete click log.
func (s *FileStore) LoadClicks(ctx context.Context) ([]*model.ClickEvent, error) {
	clicks, err := loadClicksFile(s.clicksPath())
	if err != nil {
		return nil, fmt.Errorf("read clicks file: %w", err)
	}
	return clicks, nil
}

// Ping checks that the data directory is reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStore) linksPath() string {
	return filepath.Join(s.dir, linksFileName)
}

func (s *FileStore) clicksPath() string {
	return filepath.Join(s.dir, clicksFileName)
}

// writeRows writes rows to a temp file in the same directory and renames it
// over path, so readers never observe a half-written file.
func writeRows(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
