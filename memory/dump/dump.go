// This file is part of Bellum.
//
// Bellum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Bellum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Bellum.  If not, see <https://www.gnu.org/licenses/>.

package dump

import (
	"io"

	"github.com/bradleyjkemp/memviz"
	"github.com/xazalea/bellum-sub003/memory/gc"
	"github.com/xazalea/bellum-sub003/memory/heap"
	"github.com/xazalea/bellum-sub003/memory/vmm"
)

// PageView is a page table entry and the virtual page number it belongs to.
type PageView struct {
	Number uint32
	Entry  vmm.PageTableEntry
}

// RegionView is a region of virtual memory and its pages.
type RegionView struct {
	Region vmm.Region
	Pages  []PageView
}

// VMMView is the structure graphed by VMM().
type VMMView struct {
	Stats   vmm.Stats
	Regions []*RegionView
}

// HeapView is the structure graphed by Heap().
type HeapView struct {
	Base      uint32
	Size      uint32
	Free      []heap.Block
	Allocated []heap.Block
}

// CollectorView is the structure graphed by Collector().
type CollectorView struct {
	Cycles  int
	Roots   []uint32
	Objects []gc.ObjectState
}

// NewVMMView creates a view of the virtual memory manager.
func NewVMMView(mgr *vmm.Manager) *VMMView {
	v := &VMMView{Stats: mgr.Stats()}
	g := mgr.Geometry()

	for _, r := range mgr.Regions() {
		rv := &RegionView{Region: r}
		if r.Committed {
			for n := g.Number(r.Base); n < g.Number(r.Base)+g.Pages(r.Size); n++ {
				if e, ok := mgr.PTE(g.Address(n)); ok {
					rv.Pages = append(rv.Pages, PageView{Number: n, Entry: e})
				}
			}
		}
		v.Regions = append(v.Regions, rv)
	}

	return v
}

// NewHeapView creates a view of the heap.
func NewHeapView(h *heap.Allocator) *HeapView {
	return &HeapView{
		Base:      h.Base(),
		Size:      h.Size(),
		Free:      h.FreeBlocks(),
		Allocated: h.AllocatedBlocks(),
	}
}

// NewCollectorView creates a view of the garbage collector.
func NewCollectorView(c *gc.Collector) *CollectorView {
	s := c.Snapshot()
	return &CollectorView{
		Cycles:  s.Cycles,
		Roots:   s.Roots,
		Objects: s.Objects,
	}
}

// VMM writes a graph of the regions and page table of the manager.
func VMM(w io.Writer, mgr *vmm.Manager) {
	memviz.Map(w, NewVMMView(mgr))
}

// Heap writes a graph of the free and allocated blocks of the heap.
func Heap(w io.Writer, h *heap.Allocator) {
	memviz.Map(w, NewHeapView(h))
}

// Collector writes a graph of the roots and objects of the collector.
func Collector(w io.Writer, c *gc.Collector) {
	memviz.Map(w, NewCollectorView(c))
}

// All writes a single graph of the manager, the heap and the collector. The
// heap and the collector may be nil.
func All(w io.Writer, mgr *vmm.Manager, h *heap.Allocator, c *gc.Collector) {
	views := []interface{}{NewVMMView(mgr)}
	if h != nil {
		views = append(views, NewHeapView(h))
	}
	if c != nil {
		views = append(views, NewCollectorView(c))
	}
	memviz.Map(w, views...)
}
