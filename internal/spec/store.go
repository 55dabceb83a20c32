package spec

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Entry is one stored DataSpec.
type Entry struct {
	ID       string    `json:"id"`
	Path     string    `json:"path,omitempty"`
	Entities []string  `json:"entities"`
	LoadedAt time.Time `json:"loaded_at"`
	Spec     *DataSpec `json:"-"`
	Raw      []byte    `json:"-"`
}

// Store holds the DataSpecs found in a directory and watches it for changes.
// The spec id is the file name without extension.
type Store struct {
	dir      string
	mu       sync.RWMutex
	entries  map[string]*Entry
	onChange []func(id string)
}

// NewStore creates a Store and performs the initial load. An empty dir gives
// an in-memory store that only holds specs added with Put.
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir, entries: make(map[string]*Entry)}
	if dir == "" {
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the entry for id.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// List returns all entries sorted by id.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put registers a spec under id without touching disk.
func (s *Store) Put(id string, ds *DataSpec, raw []byte) {
	e := newEntry(id, "", ds, raw)
	s.mu.Lock()
	s.entries[id] = e
	callbacks := append([]func(string){}, s.onChange...)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn(id)
	}
}

// OnChange registers a callback invoked with the id of every (re)loaded spec.
func (s *Store) OnChange(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Reload re-reads every spec file in the directory. Files that fail to parse
// are logged and skipped so one bad file does not hide the rest.
func (s *Store) Reload() error {
	if s.dir == "" {
		return nil
	}
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read spec dir %s: %w", s.dir, err)
	}
	next := make(map[string]*Entry)
	for _, f := range files {
		if f.IsDir() || !isSpecFile(f.Name()) {
			continue
		}
		path := filepath.Join(s.dir, f.Name())
		e, err := loadEntry(path)
		if err != nil {
			slog.Warn("spec skipped", "path", path, "err", err)
			continue
		}
		next[e.ID] = e
	}
	s.mu.Lock()
	// Keep specs that were added in memory.
	for id, e := range s.entries {
		if e.Path == "" {
			if _, clash := next[id]; !clash {
				next[id] = e
			}
		}
	}
	s.entries = next
	s.mu.Unlock()
	return nil
}

// Watch starts a background goroutine that reloads individual spec files as
// they change. Call the returned stop function to clean up.
func (s *Store) Watch() (stop func(), err error) {
	if s.dir == "" {
		return func() {}, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("spec watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("spec watcher add %s: %w", s.dir, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !isSpecFile(ev.Name) {
					continue
				}
				switch {
				case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
					s.remove(specID(ev.Name))
				case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
					e, err := loadEntry(ev.Name)
					if err != nil {
						slog.Warn("spec reload failed", "path", ev.Name, "err", err)
						continue
					}
					s.mu.Lock()
					s.entries[e.ID] = e
					callbacks := append([]func(string){}, s.onChange...)
					s.mu.Unlock()
					for _, fn := range callbacks {
						fn(e.ID)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("spec watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func loadEntry(path string) (*Entry, error) {
	ds, raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(ds); err != nil {
		return nil, err
	}
	return newEntry(specID(path), path, ds, raw), nil
}

func newEntry(id, path string, ds *DataSpec, raw []byte) *Entry {
	names := make([]string, 0, len(ds.Entities))
	for _, e := range ds.Entities {
		names = append(names, e.Name)
	}
	return &Entry{ID: id, Path: path, Entities: names, LoadedAt: time.Now(), Spec: ds, Raw: raw}
}

func isSpecFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func specID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
