// Package filestat summarises the files under a directory tree: how many there
// are, how they split by extension, how many are hidden, and which are largest.
package filestat

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	json "github.com/KevinWang15/go-json5"
	"github.com/dustin/go-humanize"
)

// NoExtension is the type bucket for files without an extension.
const NoExtension = "(none)"

// DefaultTopN is the number of largest files kept by Analyze when topN <= 0.
const DefaultTopN = 10

// FileSize is one file and its size in bytes.
type FileSize struct {
	Path string
	Size int64
}

// TypeCount is the number of files with one extension.
type TypeCount struct {
	Ext   string
	Count int
}

// Stats is the result of Analyze.
type Stats struct {
	Root        string
	TotalFiles  int // files whose size could be read
	HiddenFiles int
	Types       map[string]int
	Largest     []FileSize // largest first
}

// ExcludeSet holds directory names skipped during the walk.
type ExcludeSet struct {
	names map[string]struct{}
	fold  bool
}

// NewExcludeSet builds a set from names. Matching ignores case on Windows and
// macOS, whose file systems are case-insensitive by default.
func NewExcludeSet(names []string) ExcludeSet {
	return newExcludeSet(names, runtime.GOOS == "windows" || runtime.GOOS == "darwin")
}

func newExcludeSet(names []string, fold bool) ExcludeSet {
	s := ExcludeSet{names: make(map[string]struct{}, len(names)), fold: fold}
	for _, n := range names {
		s.names[s.key(n)] = struct{}{}
	}
	return s
}

func (s ExcludeSet) key(name string) string {
	if s.fold {
		return strings.ToLower(name)
	}
	return name
}

// Contains reports whether a directory called name is excluded.
func (s ExcludeSet) Contains(name string) bool {
	_, ok := s.names[s.key(name)]
	return ok
}

func (s ExcludeSet) Len() int { return len(s.names) }

// LoadExclude reads {"exclude_folders": [...]} from a json5 file. A missing
// file yields an empty set.
func LoadExclude(path string) (ExcludeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewExcludeSet(nil), nil
		}
		return ExcludeSet{}, err
	}

	var table map[string]interface{}
	if err := json.Unmarshal(data, &table); err != nil {
		return ExcludeSet{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	raw, ok := table["exclude_folders"]
	if !ok {
		return NewExcludeSet(nil), nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return ExcludeSet{}, fmt.Errorf("%s: exclude_folders: is not an array", path)
	}
	names := make([]string, 0, len(list))
	for i, v := range list {
		name, ok := v.(string)
		if !ok {
			return ExcludeSet{}, fmt.Errorf("%s: exclude_folders[%d]: is not a string", path, i)
		}
		names = append(names, name)
	}
	return NewExcludeSet(names), nil
}

// Analyze walks root, skipping every directory whose name is in exclude, and
// keeps the topN largest files. Unreadable subdirectories and files whose size
// cannot be read are skipped.
func Analyze(root string, exclude ExcludeSet, topN int) (*Stats, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	st := &Stats{Root: root, Types: make(map[string]int)}
	var sizes []FileSize

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && exclude.Contains(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		st.Types[extension(d.Name())]++
		if isHidden(path, d.Name()) {
			st.HiddenFiles++
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		sizes = append(sizes, FileSize{Path: path, Size: fi.Size()})
		st.TotalFiles++
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sizes, func(i, j int) bool {
		if sizes[i].Size != sizes[j].Size {
			return sizes[i].Size > sizes[j].Size
		}
		return sizes[i].Path < sizes[j].Path
	})
	if len(sizes) > topN {
		sizes = sizes[:topN]
	}
	st.Largest = sizes
	return st, nil
}

// extension is the lower-case extension of name without the dot.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) == len(name) {
		return NoExtension
	}
	return ext[1:]
}

// TopTypes returns the n most common extensions, most common first, with the
// rest folded into a final "other" entry.
func (s *Stats) TopTypes(n int) []TypeCount {
	all := make([]TypeCount, 0, len(s.Types))
	for ext, c := range s.Types {
		all = append(all, TypeCount{Ext: ext, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Ext < all[j].Ext
	})
	if n <= 0 || len(all) <= n {
		return all
	}
	other := 0
	for _, tc := range all[n:] {
		other += tc.Count
	}
	return append(all[:n:n], TypeCount{Ext: "other", Count: other})
}

// HumanSize formats a byte count with binary units, e.g. "1.5 MiB".
func HumanSize(b int64) string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}
