package fsops

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"

	"github.com/SBOne-Kenobi/OneFS/node"
)

// FindFiles walks the tree rooted at cursor's current folder using an
// explicit stack (no unbounded recursion, per spec.md §4.5), invoking visit
// for every file whose absolute path string matches pattern. visit returns
// false to stop the walk early; the caller owns closing every loader it is
// handed.
func (s *Service) FindFiles(cursor Cursor, pattern string, recursive bool, visit func(node.FileLoader) (bool, error)) error {
	if pattern == "" {
		pattern = "*"
	}
	glob, err := NewGlob(pattern)
	if err != nil {
		return fmt.Errorf("fsops: compiling glob %q: %w", pattern, err)
	}

	root, err := cursor.Loader().Load()
	if err != nil {
		return err
	}

	type frame struct{ folder *node.FolderNode }
	stack := []frame{{folder: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, fl := range top.folder.Files {
			if !glob.Match(fl.Path().String()) {
				continue
			}
			cont, err := visit(fl)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}

		if !recursive {
			continue
		}
		for _, foldLoader := range top.folder.Folders {
			sub, err := foldLoader.Load()
			if err != nil {
				return err
			}
			stack = append(stack, frame{folder: sub})
		}
	}
	return nil
}

// InputStream opens name (relative to cursor, or absolute) for reading.
func (s *Service) InputStream(cursor Cursor, name string) (io.ReadCloser, error) {
	path := s.resolve(cursor, name, false)
	cell, err := s.store.GetFileDataCell(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(cell.Reader()), nil
}

// ReadFile reads the whole of name's content.
func (s *Service) ReadFile(cursor Cursor, name string) ([]byte, error) {
	r, err := s.InputStream(cursor, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Validate folds over every file under cursor's current folder (recursing
// into subfolders) and reports whether each stored MD5 matches the MD5 of
// its content bytes as read through the data cell.
func (s *Service) Validate(cursor Cursor) (bool, error) {
	ok := true
	err := s.FindFiles(cursor, "**", true, func(fl node.FileLoader) (bool, error) {
		defer fl.Close()
		fn, err := fl.Load()
		if err != nil {
			return false, err
		}
		r, err := s.InputStream(cursor, fl.Path().String())
		if err != nil {
			return false, err
		}
		defer r.Close()
		h := md5.New()
		if _, err := io.Copy(h, r); err != nil {
			return false, err
		}
		if !bytes.Equal(h.Sum(nil), fn.MD5[:]) {
			ok = false
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}
