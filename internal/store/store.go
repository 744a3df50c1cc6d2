// Package store maintains the on-disk asset set: the flat output directory of
// downloaded gallery images, plus the in-memory index of asset identifiers
// derived from its filenames. The index is the deduplication gate consulted
// before every network fetch.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/ztrue/tracerr"
	"golang.org/x/sync/errgroup"
)

// Filenames are "<asset-id>.<ext>"; anything else in the directory is ignored.
var fileRegex = regexp.MustCompile(`^([0-9a-f]{8,})\.(jpe?g|png)$`)

const scanConcurrency = 8

// Set is the on-disk asset set for one output directory. It is owned by the
// single download loop; the mutex only guards the startup scan.
type Set struct {
	dir string

	mu  sync.Mutex
	ids map[string]string // asset id -> filename
}

// Open creates the output directory if needed and rebuilds the asset set from
// its directory listing. Empty files (aborted earlier writes) are removed so
// their assets get fetched again.
func Open(dir string) (*Set, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, tracerr.Wrap(err)
	}

	s := &Set{dir: dir, ids: make(map[string]string)}
	if err := s.scan(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Set) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return tracerr.Wrap(err)
	}

	var eg errgroup.Group
	eg.SetLimit(scanConcurrency)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := fileRegex.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		name := entry.Name()
		id := m[1]

		eg.Go(func() error {
			info, err := os.Stat(filepath.Join(s.dir, name))
			if err != nil {
				return tracerr.Wrap(err)
			}

			if info.Size() == 0 {
				// A zero-byte file cannot be a valid image; drop it so the
				// asset is retried on this run.
				return tracerr.Wrap(os.Remove(filepath.Join(s.dir, name)))
			}

			s.mu.Lock()
			s.ids[id] = name
			s.mu.Unlock()
			return nil
		})
	}

	return eg.Wait()
}

// Contains reports whether the asset is already on disk.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len is the number of assets currently in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Dir returns the output directory path.
func (s *Set) Dir() string {
	return s.dir
}

// Files returns the absolute paths of all stored assets, sorted by filename.
func (s *Set) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.ids))
	for _, name := range s.ids {
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Strings(paths)

	return paths
}

// Save writes the asset bytes atomically (temp file, then rename) and adds the
// id to the set. An empty body is an error and leaves the set untouched, so a
// later run retries the asset.
func (s *Set) Save(id, ext string, r io.Reader) (string, int64, error) {
	name := fmt.Sprintf("%s.%s", id, ext)
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, tracerr.Wrap(err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()

	if copyErr != nil {
		os.Remove(tmp)
		return "", 0, tracerr.Wrap(copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return "", 0, tracerr.Wrap(closeErr)
	}
	if n == 0 {
		os.Remove(tmp)
		return "", 0, tracerr.Wrap(fmt.Errorf("refusing to store empty body for asset %s", id))
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", 0, tracerr.Wrap(err)
	}

	s.mu.Lock()
	s.ids[id] = name
	s.mu.Unlock()

	return path, n, nil
}
