// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/tools/godoc/vfs"

	"qdemo/pack"
)

var (
	baseDir string
	gameDir string
	gameNS  = vfs.NameSpace{}
	paks    []*pack.Pack
	mutex   sync.RWMutex
)

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

type packFileSystem struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

type fileInfo struct {
	name string // base name of the file
	size int64  // length in bytes for regular files; system-dependent for others
	dir  bool
}

func (f *fileInfo) Name() string {
	return f.name
}
func (f *fileInfo) Size() int64 {
	return f.size
}
func (f *fileInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0555
	}
	return 0444
}
func (f *fileInfo) ModTime() time.Time {
	return time.Time{}
}
func (f *fileInfo) IsDir() bool {
	return f.dir
}
func (f *fileInfo) Sys() any {
	return nil
}

func (p packFileSystem) Open(path string) (vfs.ReadSeekCloser, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	path = strings.TrimPrefix(path, "/")
	f, err := p.p.Open(path)
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packFileSystem) stat(name string) (os.FileInfo, error) {
	name = strings.TrimPrefix(name, "/")
	if s, ok := p.p.Size(name); ok {
		return &fileInfo{
			name: path.Base(name),
			size: s,
		}, nil
	}
	dir := name + "/"
	for _, n := range p.p.Names() {
		if name == "" || strings.HasPrefix(n, dir) {
			return &fileInfo{name: path.Base(name), dir: true}, nil
		}
	}
	return nil, os.ErrNotExist
}

func (p packFileSystem) Stat(path string) (os.FileInfo, error) {
	return p.stat(path)
}

func (p packFileSystem) Lstat(path string) (os.FileInfo, error) {
	return p.stat(path)
}

// ReadDir lists the entries directly below dir. Directories inside a pack
// only exist implicitly through the names of the files.
func (p packFileSystem) ReadDir(dir string) ([]os.FileInfo, error) {
	dir = strings.Trim(dir, "/")
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	var r []os.FileInfo
	seen := make(map[string]bool)
	for _, n := range p.p.Names() {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		rest := n[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			d := rest[:i]
			if !seen[d] {
				seen[d] = true
				r = append(r, &fileInfo{name: d, dir: true})
			}
			continue
		}
		s, _ := p.p.Size(n)
		r = append(r, &fileInfo{name: rest, size: s})
	}
	if r == nil && dir != "" {
		return nil, os.ErrNotExist
	}
	return r, nil
}

func (p packFileSystem) RootType(string) vfs.RootType {
	return ""
}

func (p packFileSystem) String() string {
	return p.p.String()
}

func GameDir() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameDir
}

func BaseDir() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return baseDir
}

func closePaks() {
	for _, p := range paks {
		p.Close()
	}
	paks = nil
}

func UseBaseDir(dir string) {
	mutex.Lock()
	defer mutex.Unlock()
	closePaks()
	baseDir = dir
	root := filepath.Join(baseDir, "id1")
	gameDir = root
	gameNS = vfs.NameSpace{}
	gameNS.Bind("/", vfs.OS(root), "/", vfs.BindReplace)
	useDir(gameNS, root)
}

func UseGameDir(dir string) {
	mutex.Lock()
	defer mutex.Unlock()
	closePaks()
	gameNS = vfs.NameSpace{}
	root := filepath.Join(baseDir, "id1")
	gameNS.Bind("/", vfs.OS(root), "/", vfs.BindReplace)
	useDir(gameNS, root)
	gameDir = filepath.Join(baseDir, dir)
	gameNS.Bind("/", vfs.OS(gameDir), "/", vfs.BindBefore)
	useDir(gameNS, gameDir)
}

func useDir(ns vfs.NameSpace, dir string) {
	// 1) Add pak[i].pak files to the beginning order high number to low number
	// 2) add quakespasm.pak to the beginning
	for i := 0; ; i++ {
		pfn := fmt.Sprintf("pak%d.pak", i)
		pfp := filepath.Join(dir, pfn)
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			break
		}
		paks = append(paks, p)
		ns.Bind("/", packFileSystem{p}, "/", vfs.BindBefore)
	}
	qsm := filepath.Join(dir, "quakespasm.pak")
	qsmp, err := pack.NewPackReader(qsm)
	if err == nil {
		paks = append(paks, qsmp)
		ns.Bind("/", packFileSystem{qsmp}, "/", vfs.BindBefore)
	}
}

func Stat(name string) (os.FileInfo, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameNS.Stat(path.Join("/", name))
}

// ReadDir merges the listing of dir over the game dir, its base and all paks.
func ReadDir(dir string) ([]os.FileInfo, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameNS.ReadDir(path.Join("/", dir))
}

func Open(name string) (File, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	nf, err := gameNS.Open(path.Join("/", name))
	if err != nil {
		return nil, err
	}
	f, ok := nf.(File)
	if !ok {
		nf.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// Create creates or truncates name inside the game dir, creating missing
// directories on the way. New files are never written into a pak.
func Create(name string) (*os.File, error) {
	dir := GameDir()
	if dir == "" {
		return nil, errors.New("no game dir set")
	}
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create directory for %s", name)
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create %s", name)
	}
	return f, nil
}

func ReadFile(name string) ([]byte, error) {
	file, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

// DefaultExt appends ext to path if it has no extension yet.
func DefaultExt(path, ext string) string {
	if Ext(path) != "" {
		return path
	}
	return path + ext
}
