// Package alloc tracks free and used byte ranges within the container file
// and serves size-fit requests (spec.md §4.2, component C2). It never
// touches the container itself; it only answers offset questions for
// store.Store to act on.
package alloc

import (
	"fmt"
	"sort"
)

// Area is a contiguous byte range [Offset, Offset+Size) in the container.
type Area struct {
	Offset int64
	Size   int64
}

// End returns the first offset past the area.
func (a Area) End() int64 { return a.Offset + a.Size }

// Allocator maintains free/used areas keyed by start offset, plus a
// free-by-size index for fast best-fit lookups, matching spec.md §4.2's
// three-index description.
type Allocator struct {
	free         map[int64]Area
	used         map[int64]Area
	freeBySize   []Area // kept sorted by (Size, Offset)
	lastPosition int64
}

// New returns an empty Allocator.
func New() *Allocator {
	return &Allocator{
		free: make(map[int64]Area),
		used: make(map[int64]Area),
	}
}

// LastPosition is the high-water mark: the end of the highest-offset area
// registered so far, i.e. where the container would need to grow to admit
// another appended area.
func (a *Allocator) LastPosition() int64 { return a.lastPosition }

// RegisterFree admits a known free area discovered by a scan, advancing the
// high-water mark.
func (a *Allocator) RegisterFree(area Area) {
	a.free[area.Offset] = area
	a.insertFreeBySize(area)
	a.advance(area)
}

// RegisterUsed admits a known used area discovered by a scan, advancing the
// high-water mark.
func (a *Allocator) RegisterUsed(area Area) {
	a.used[area.Offset] = area
	a.advance(area)
}

func (a *Allocator) advance(area Area) {
	if end := area.End(); end > a.lastPosition {
		a.lastPosition = end
	}
}

// UnregisterFree removes and returns the free area starting at pos.
func (a *Allocator) UnregisterFree(pos int64) (Area, error) {
	area, ok := a.free[pos]
	if !ok {
		return Area{}, fmt.Errorf("alloc: no free area registered at offset %d", pos)
	}
	delete(a.free, pos)
	a.removeFreeBySize(area)
	return area, nil
}

// UnregisterUsed removes and returns the used area starting at pos.
func (a *Allocator) UnregisterUsed(pos int64) (Area, error) {
	area, ok := a.used[pos]
	if !ok {
		return Area{}, fmt.Errorf("alloc: no used area registered at offset %d", pos)
	}
	delete(a.used, pos)
	return area, nil
}

// Allocate serves a size-fit request for at least minSize bytes.
//
// It first looks for the smallest registered free area of at least minSize
// bytes. If one exists and either fitted is false or the area is an exact
// match, that area is reclassified as used and returned. Otherwise a new
// used area is appended at the high-water mark, sized by roundUp(minSize):
// identity when fitted, else the smallest power of two >= minSize. Power-of-
// two growth amortises reallocation for append-heavy ROW content; exact fit
// is used for FILE/FOLDER records, which never grow.
func (a *Allocator) Allocate(minSize int64, fitted bool) (Area, error) {
	if minSize < 0 {
		return Area{}, fmt.Errorf("alloc: negative size %d", minSize)
	}
	if idx, ok := a.findBestFit(minSize); ok {
		area := a.freeBySize[idx]
		if !fitted || area.Size == minSize {
			if _, err := a.UnregisterFree(area.Offset); err != nil {
				return Area{}, err
			}
			a.RegisterUsed(area)
			return area, nil
		}
	}

	size := minSize
	if !fitted {
		size = roundUpPowerOfTwo(minSize)
	}
	area := Area{Offset: a.lastPosition, Size: size}
	a.RegisterUsed(area)
	return area, nil
}

// Clear drops all allocator state, used when re-scanning the container.
func (a *Allocator) Clear() {
	a.free = make(map[int64]Area)
	a.used = make(map[int64]Area)
	a.freeBySize = nil
	a.lastPosition = 0
}

// FreeAreas returns all currently free areas, ordered by offset.
func (a *Allocator) FreeAreas() []Area {
	out := make([]Area, 0, len(a.free))
	for _, area := range a.free {
		out = append(out, area)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// UsedAreas returns all currently used areas, ordered by offset.
func (a *Allocator) UsedAreas() []Area {
	out := make([]Area, 0, len(a.used))
	for _, area := range a.used {
		out = append(out, area)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// IsUsed reports whether pos is a registered used area's start.
func (a *Allocator) IsUsed(pos int64) bool {
	_, ok := a.used[pos]
	return ok
}

// IsFree reports whether pos is a registered free area's start.
func (a *Allocator) IsFree(pos int64) bool {
	_, ok := a.free[pos]
	return ok
}

func (a *Allocator) findBestFit(minSize int64) (int, bool) {
	i := sort.Search(len(a.freeBySize), func(i int) bool {
		return a.freeBySize[i].Size >= minSize
	})
	if i == len(a.freeBySize) {
		return 0, false
	}
	return i, true
}

func (a *Allocator) insertFreeBySize(area Area) {
	i := sort.Search(len(a.freeBySize), func(i int) bool {
		if a.freeBySize[i].Size != area.Size {
			return a.freeBySize[i].Size > area.Size
		}
		return a.freeBySize[i].Offset >= area.Offset
	})
	a.freeBySize = append(a.freeBySize, Area{})
	copy(a.freeBySize[i+1:], a.freeBySize[i:])
	a.freeBySize[i] = area
}

func (a *Allocator) removeFreeBySize(area Area) {
	for i, cand := range a.freeBySize {
		if cand == area {
			a.freeBySize = append(a.freeBySize[:i], a.freeBySize[i+1:]...)
			return
		}
	}
}

func roundUpPowerOfTwo(n int64) int64 {
	if n <= 1 {
		return 1
	}
	p := int64(1)
	for p < n {
		p <<= 1
	}
	return p
}
