package pck

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// memChunk は疎なファイル上の実データ部分
type memChunk struct {
	off  int64
	data []byte
}

// memFile は穴あきのメモリ上ファイル。データのない範囲はゼロとして読める。
type memFile struct {
	size   int64
	chunks []memChunk
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if off >= f.size {
		return 0, io.EOF
	}
	n := len(p)
	if rest := f.size - off; int64(n) > rest {
		n = int(rest)
	}
	clear(p[:n])
	for _, c := range f.chunks {
		start := max(off, c.off)
		end := min(off+int64(n), c.off+int64(len(c.data)))
		if start < end {
			copy(p[start-off:end-off], c.data[start-c.off:end-c.off])
		}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// memHandle は開かれた memFile。Close の呼び出しを記録する。
type memHandle struct {
	*memFile
	fs     *memFS
	closed bool
}

func (h *memHandle) Size() int64 {
	return h.size
}

func (h *memHandle) Close() error {
	if h.closed {
		return os.ErrClosed
	}
	h.closed = true
	h.fs.mu.Lock()
	h.fs.openHandles--
	h.fs.mu.Unlock()
	return nil
}

// memFS はテスト用のメモリ上ファイルシステム
type memFS struct {
	mu          sync.Mutex
	files       map[string]*memFile
	written     map[string][]byte
	dirs        map[string]bool
	openHandles int
	opens       map[string]int
	writeErr    error
}

func newMemFS() *memFS {
	return &memFS{
		files:   make(map[string]*memFile),
		written: make(map[string][]byte),
		dirs:    make(map[string]bool),
		opens:   make(map[string]int),
	}
}

// addBytes は連続したデータを持つファイルを追加します
func (m *memFS) addBytes(name string, data []byte) {
	m.files[name] = &memFile{size: int64(len(data)), chunks: []memChunk{{off: 0, data: data}}}
}

func (m *memFS) Open(name string) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[name]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	m.openHandles++
	m.opens[name]++
	return &memHandle{memFile: f, fs: m}, nil
}

func (m *memFS) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func (m *memFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := filepath.Clean(path); p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

func (m *memFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if !m.dirs[filepath.Dir(name)] {
		return &os.PathError{Op: "write", Path: name, Err: os.ErrNotExist}
	}
	m.written[name] = append([]byte(nil), data...)
	return nil
}
