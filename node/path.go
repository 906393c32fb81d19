package node

import "strings"

// Path is an ordered, immutable list of name components. A leading "/"
// marks an absolute path; a trailing "/" marks a folder-valued path.
// Relative paths resolve against the navigator's current folder.
type Path struct {
	absolute   bool
	folder     bool
	components []string
}

// ParsePath splits a path string into a Path, per spec.md §3 "Paths".
func ParsePath(s string) Path {
	p := Path{}
	if strings.HasPrefix(s, "/") {
		p.absolute = true
		s = s[1:]
	}
	if s == "" {
		p.folder = true
		return p
	}
	if strings.HasSuffix(s, "/") {
		p.folder = true
		s = s[:len(s)-1]
	}
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue
		}
		p.components = append(p.components, c)
	}
	return p
}

// Root is the empty absolute folder path "/".
func Root() Path {
	return Path{absolute: true, folder: true}
}

// Absolute reports whether the path is rooted.
func (p Path) Absolute() bool { return p.absolute }

// IsFolder reports whether the path denotes a folder (trailing "/", or empty).
func (p Path) IsFolder() bool { return p.folder }

// Components returns the ordered name components, never including the root.
func (p Path) Components() []string {
	out := make([]string, len(p.components))
	copy(out, p.components)
	return out
}

// AddFile returns a new path with name appended as a file component.
func (p Path) AddFile(name string) Path {
	return p.add(name, false)
}

// AddFolder returns a new path with name appended as a folder component.
func (p Path) AddFolder(name string) Path {
	return p.add(name, true)
}

func (p Path) add(name string, folder bool) Path {
	comps := make([]string, len(p.components), len(p.components)+1)
	copy(comps, p.components)
	comps = append(comps, name)
	return Path{absolute: p.absolute, folder: folder, components: comps}
}

// RemoveLast drops the last component, returning a folder-valued path. It is
// a no-op on an already-empty path.
func (p Path) RemoveLast() Path {
	if len(p.components) == 0 {
		return Path{absolute: p.absolute, folder: true}
	}
	comps := make([]string, len(p.components)-1)
	copy(comps, p.components[:len(p.components)-1])
	return Path{absolute: p.absolute, folder: true, components: comps}
}

// Name is the last component, or "." if the path has none (the root).
func (p Path) Name() string {
	if len(p.components) == 0 {
		return "."
	}
	return p.components[len(p.components)-1]
}

// String renders the path back to its canonical string form.
func (p Path) String() string {
	var b strings.Builder
	if p.absolute {
		b.WriteByte('/')
	}
	for i, c := range p.components {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(c)
	}
	if p.folder && len(p.components) > 0 {
		b.WriteByte('/')
	}
	return b.String()
}

// Empty reports whether the path has no components (refers to the root
// folder, when absolute).
func (p Path) Empty() bool { return len(p.components) == 0 }

// Join resolves rel against p, treating p as the base folder: an absolute
// rel is returned unchanged, otherwise rel's components are appended to
// p's. Used to resolve a relative name against the navigator's current
// folder (spec.md §3 "Relative paths resolve against the navigator's
// current folder").
func (p Path) Join(rel Path) Path {
	if rel.absolute {
		return rel
	}
	comps := make([]string, len(p.components), len(p.components)+len(rel.components))
	copy(comps, p.components)
	comps = append(comps, rel.components...)
	return Path{absolute: p.absolute, folder: rel.folder, components: comps}
}
