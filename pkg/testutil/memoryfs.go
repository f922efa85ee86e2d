package testutil

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/weykent/runitsv/pkg/types"
)

// MemoryFS implements types.FS with in-memory storage. Unlike afero's
// MemMapFs it represents symlinks as first-class nodes, which every
// link record test depends on.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*fileNode

	// Error injection: operations touching these paths fail with the
	// injected error.
	errorPaths map[string]error

	tmpSeq int
}

// fileNode represents a file, directory or symlink in memory
type fileNode struct {
	mode     fs.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
}

// NewMemoryFS creates a new in-memory filesystem with a root directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*fileNode{
			"/": {mode: 0o755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
		errorPaths: make(map[string]error),
	}
}

// InjectError makes every operation on path fail with err.
func (m *MemoryFS) InjectError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[filepath.Clean(path)] = err
}

func (m *MemoryFS) checkInjected(path string) error {
	if err, ok := m.errorPaths[filepath.Clean(path)]; ok {
		return err
	}
	return nil
}

func (m *MemoryFS) getNode(path string) (*fileNode, error) {
	path = filepath.Clean(path)
	node, exists := m.nodes[path]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return node, nil
}

// resolve follows a trailing symlink one level, the way os.Open does.
func (m *MemoryFS) resolve(path string) (string, *fileNode, error) {
	node, err := m.getNode(path)
	if err != nil {
		return "", nil, err
	}
	if node.isLink {
		dest := node.linkDest
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(path), dest)
		}
		node, err = m.getNode(dest)
		if err != nil {
			return "", nil, err
		}
		return dest, node, nil
	}
	return filepath.Clean(path), node, nil
}

func (m *MemoryFS) Open(name string) (fs.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkInjected(name); err != nil {
		return nil, err
	}
	resolved, node, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return &memFile{
		reader: bytes.NewReader(node.content),
		info:   newFileInfo(filepath.Base(resolved), node),
	}, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeFileLocked(name, data, perm)
}

func (m *MemoryFS) writeFileLocked(name string, data []byte, perm fs.FileMode) error {
	if err := m.checkInjected(name); err != nil {
		return err
	}
	name = filepath.Clean(name)
	if err := m.requireDir(filepath.Dir(name)); err != nil {
		return err
	}
	m.nodes[name] = &fileNode{
		mode:    perm,
		modTime: time.Now(),
		content: append([]byte(nil), data...),
	}
	return nil
}

func (m *MemoryFS) Chmod(name string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(name); err != nil {
		return err
	}
	_, node, err := m.resolve(name)
	if err != nil {
		return err
	}
	node.mode = node.mode&^fs.FileMode(0o7777) | mode&fs.FileMode(0o7777)
	return nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(oldpath); err != nil {
		return err
	}
	if err := m.checkInjected(newpath); err != nil {
		return err
	}
	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	node, err := m.getNode(oldpath)
	if err != nil {
		return err
	}
	if err := m.requireDir(filepath.Dir(newpath)); err != nil {
		return err
	}
	m.nodes[newpath] = node
	delete(m.nodes, oldpath)
	return nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(name); err != nil {
		return err
	}
	name = filepath.Clean(name)
	node, err := m.getNode(name)
	if err != nil {
		return err
	}
	if node.isDir && len(m.childrenLocked(name)) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: fmt.Errorf("directory not empty")}
	}
	delete(m.nodes, name)
	return nil
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(path); err != nil {
		return err
	}
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for p := range m.nodes {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.nodes, p)
		}
	}
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(path); err != nil {
		return err
	}
	path = filepath.Clean(path)
	var parts []string
	for p := path; p != "/" && p != "."; p = filepath.Dir(p) {
		parts = append([]string{p}, parts...)
	}
	for _, p := range parts {
		if node, ok := m.nodes[p]; ok {
			if !node.isDir {
				return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
			}
			continue
		}
		m.nodes[p] = &fileNode{mode: perm | fs.ModeDir, modTime: time.Now(), isDir: true}
	}
	return nil
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkInjected(name); err != nil {
		return nil, err
	}
	name = filepath.Clean(name)
	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	names := m.childrenLocked(name)
	sort.Strings(names)
	entries := make([]fs.DirEntry, 0, len(names))
	for _, child := range names {
		entries = append(entries, fs.FileInfoToDirEntry(
			newFileInfo(child, m.nodes[filepath.Join(name, child)])))
	}
	return entries, nil
}

func (m *MemoryFS) childrenLocked(dir string) []string {
	prefix := filepath.Clean(dir)
	if prefix != "/" {
		prefix += string(filepath.Separator)
	}
	var names []string
	for p := range m.nodes {
		if p == filepath.Clean(dir) || !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if !strings.Contains(rest, string(filepath.Separator)) {
			names = append(names, rest)
		}
	}
	return names
}

func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(newname); err != nil {
		return err
	}
	newname = filepath.Clean(newname)
	if _, exists := m.nodes[newname]; exists {
		return &fs.PathError{Op: "symlink", Path: newname, Err: fs.ErrExist}
	}
	if err := m.requireDir(filepath.Dir(newname)); err != nil {
		return err
	}
	m.nodes[newname] = &fileNode{
		mode:     0o777 | fs.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: oldname,
	}
	return nil
}

func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkInjected(name); err != nil {
		return "", err
	}
	node, err := m.getNode(name)
	if err != nil {
		return "", err
	}
	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return node.linkDest, nil
}

func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkInjected(name); err != nil {
		return nil, err
	}
	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	return newFileInfo(filepath.Base(filepath.Clean(name)), node), nil
}

func (m *MemoryFS) CreateTemp(dir, pattern string) (types.TempFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkInjected(dir); err != nil {
		return nil, err
	}
	if err := m.requireDir(dir); err != nil {
		return nil, err
	}
	m.tmpSeq++
	name := strings.Replace(pattern, "*", fmt.Sprintf("%d", m.tmpSeq), 1)
	if name == pattern {
		name = pattern + fmt.Sprintf("%d", m.tmpSeq)
	}
	path := filepath.Join(dir, name)
	return &memTempFile{fs: m, path: path}, nil
}

func (m *MemoryFS) requireDir(dir string) error {
	node, err := m.getNode(dir)
	if err != nil {
		return err
	}
	if !node.isDir {
		return &fs.PathError{Op: "open", Path: dir, Err: fs.ErrInvalid}
	}
	return nil
}

// memTempFile buffers writes and materializes the node on Close.
type memTempFile struct {
	fs   *MemoryFS
	path string
	buf  bytes.Buffer
}

func (f *memTempFile) Name() string { return f.path }

func (f *memTempFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *memTempFile) Close() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	return f.fs.writeFileLocked(f.path, f.buf.Bytes(), 0o600)
}

// memFile implements fs.File over an in-memory node.
type memFile struct {
	reader *bytes.Reader
	info   fs.FileInfo
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Read(p []byte) (int, error) { return f.reader.Read(p) }
func (f *memFile) Close() error               { return nil }

// fileInfo implements fs.FileInfo for memory nodes
type fileInfo struct {
	name string
	node *fileNode
}

func newFileInfo(name string, node *fileNode) fs.FileInfo {
	return &fileInfo{name: name, node: node}
}

func (i *fileInfo) Name() string       { return i.name }
func (i *fileInfo) Size() int64        { return int64(len(i.node.content)) }
func (i *fileInfo) Mode() fs.FileMode  { return i.node.mode }
func (i *fileInfo) ModTime() time.Time { return i.node.modTime }
func (i *fileInfo) IsDir() bool        { return i.node.isDir }
func (i *fileInfo) Sys() interface{}   { return nil }
