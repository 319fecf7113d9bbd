// Package yamlfile stores each service's history as a YAML sequence in
// <dir>/<slug>.yml. Every Record rewrites the whole file.
package yamlfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/statushistory/internal/domain"
	"github.com/hamed0406/statushistory/internal/repo"
)

// DefaultDir is resolved against the working directory.
const DefaultDir = "history"

const ext = ".yml"

type Store struct {
	Dir        string
	MaxEntries int
	Logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per slug
}

func New(dir string, logger *zap.Logger) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, MaxEntries: domain.MaxHistoryEntries, Logger: logger}
}

// Path is the file holding service's log.
func (s *Store) Path(service string) string {
	return filepath.Join(s.Dir, domain.Slug(service)+ext)
}

// Record serializes writers of the same slug within the process and swaps
// the new file in with a rename, so readers never see a partial log.
func (s *Store) Record(ctx context.Context, service string, r domain.StatusRecord) (domain.HistoryLog, error) {
	lock := s.lock(domain.Slug(service))
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	h, err := s.Load(ctx, service)
	if err != nil {
		return nil, err
	}

	limit := s.MaxEntries
	if limit <= 0 {
		limit = domain.MaxHistoryEntries
	}
	h = h.Append(r, limit)

	b, err := encode(h)
	if err != nil {
		return nil, fmt.Errorf("encode history %s: %w", service, err)
	}
	path := s.Path(service)
	if err := writeAtomic(path, b); err != nil {
		return nil, fmt.Errorf("write history %s: %w", path, err)
	}
	return h, nil
}

func (s *Store) lock(slug string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[slug]
	if !ok {
		l = &sync.Mutex{}
		s.locks[slug] = l
	}
	return l
}

// writeAtomic writes b to a temp file next to path and renames it over path.
func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op once renamed

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}

func (s *Store) Load(ctx context.Context, service string) (domain.HistoryLog, error) {
	path := s.Path(service)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.HistoryLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}

	h, dropped, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repo.ErrCorruptHistory, path, err)
	}
	if dropped > 0 {
		s.logger().Warn("history_entries_dropped",
			zap.String("path", path),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(h)),
		)
	}
	return h, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// decode parses a stored log. Entries that are not well-formed records are
// skipped and counted; only a document that is not YAML, or not a sequence,
// is an error.
func decode(b []byte) (domain.HistoryLog, int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, 0, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return domain.HistoryLog{}, 0, nil
		}
		root = root.Content[0]
	}
	switch {
	case root.Kind == 0:
		return domain.HistoryLog{}, 0, nil
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		return domain.HistoryLog{}, 0, nil
	case root.Kind != yaml.SequenceNode:
		return nil, 0, fmt.Errorf("line %d: expected a sequence of records", root.Line)
	}

	h := make(domain.HistoryLog, 0, len(root.Content))
	dropped := 0
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			dropped++
			continue
		}
		var r domain.StatusRecord
		if err := item.Decode(&r); err != nil {
			dropped++
			continue
		}
		if err := domain.Validate(r); err != nil {
			dropped++
			continue
		}
		h = append(h, r)
	}
	return h, dropped, nil
}

func encode(h domain.HistoryLog) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(h); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
