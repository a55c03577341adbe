package filesystem

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage. It is intended for
// tests: paths are normalized to slash-separated absolute form, and errors
// can be injected per path to exercise failure branches.
type MemoryFS struct {
	mu         sync.RWMutex
	files      map[string]*fileNode
	errorPaths map[string]error
}

// fileNode represents a file or directory in memory
type fileNode struct {
	name    string
	mode    fs.FileMode
	modTime time.Time
	content []byte
	isDir   bool
}

// NewMemory creates a new in-memory filesystem containing only the root
// directory.
func NewMemory() *MemoryFS {
	return &MemoryFS{
		files: map[string]*fileNode{
			"/": {name: "/", mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
		errorPaths: make(map[string]error),
	}
}

// WithError injects an error returned by any operation touching path.
func (m *MemoryFS) WithError(p string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[m.normalize(p)] = err
	return m
}

func (m *MemoryFS) normalize(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func (m *MemoryFS) getNode(p string) (*fileNode, error) {
	p = m.normalize(p)
	if err, ok := m.errorPaths[p]; ok {
		return nil, err
	}
	node, exists := m.files[p]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return node, nil
}

// ensureDir creates the directory at p and all missing parents.
func (m *MemoryFS) ensureDir(p string) {
	p = m.normalize(p)
	if p != "/" {
		m.ensureDir(path.Dir(p))
	}
	if _, exists := m.files[p]; !exists {
		m.files[p] = &fileNode{
			name:    path.Base(p),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		}
	}
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	return &memoryFileInfo{node: node}, nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	out := make([]byte, len(node.content))
	copy(out, node.content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.normalize(name)
	if err, ok := m.errorPaths[p]; ok {
		return err
	}
	m.ensureDir(path.Dir(p))

	content := make([]byte, len(data))
	copy(content, data)
	m.files[p] = &fileNode{
		name:    path.Base(p),
		mode:    perm,
		modTime: time.Now(),
		content: content,
	}
	return nil
}

func (m *MemoryFS) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	np := m.normalize(p)
	if err, ok := m.errorPaths[np]; ok {
		return err
	}
	m.ensureDir(np)
	return nil
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := m.normalize(name)
	node, err := m.getNode(dir)
	if err != nil {
		return nil, err
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	var entries []fs.DirEntry
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	for p, child := range m.files {
		if p == dir || !strings.HasPrefix(p, prefix) {
			continue
		}
		// Direct children only
		if strings.Contains(p[len(prefix):], "/") {
			continue
		}
		entries = append(entries, &memoryDirEntry{node: child})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.normalize(name)
	if _, exists := m.files[p]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.files, p)
	return nil
}

func (m *MemoryFS) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	np := m.normalize(p)
	prefix := np
	if prefix != "/" {
		prefix += "/"
	}
	for candidate := range m.files {
		if candidate == np || strings.HasPrefix(candidate, prefix) {
			delete(m.files, candidate)
		}
	}
	return nil
}

// memoryFileInfo implements fs.FileInfo for in-memory nodes
type memoryFileInfo struct {
	node *fileNode
}

func (i *memoryFileInfo) Name() string       { return i.node.name }
func (i *memoryFileInfo) Size() int64        { return int64(len(i.node.content)) }
func (i *memoryFileInfo) Mode() fs.FileMode  { return i.node.mode }
func (i *memoryFileInfo) ModTime() time.Time { return i.node.modTime }
func (i *memoryFileInfo) IsDir() bool        { return i.node.isDir }
func (i *memoryFileInfo) Sys() interface{}   { return nil }

// memoryDirEntry implements fs.DirEntry for in-memory nodes
type memoryDirEntry struct {
	node *fileNode
}

func (e *memoryDirEntry) Name() string { return e.node.name }
func (e *memoryDirEntry) IsDir() bool  { return e.node.isDir }
func (e *memoryDirEntry) Type() fs.FileMode {
	return e.node.mode.Type()
}
func (e *memoryDirEntry) Info() (fs.FileInfo, error) {
	return &memoryFileInfo{node: e.node}, nil
}
