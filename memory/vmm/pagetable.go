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

package vmm

import (
	"slices"

	"github.com/xazalea/bellum-sub003/memory/memorymap"
)

// PageTableEntry is the per-page metadata of a committed page.
type PageTableEntry struct {
	// the address of the page in the physical store
	Physical uint64

	Protection memorymap.Protection

	// the page is mapped. always true for an entry in the page table because
	// pages are never swapped out
	Present bool

	// the page has been written to
	Dirty bool

	// the page has been read or written
	Accessed bool
}

// page is the internal form of a page table entry. it includes the slice of
// the physical store backing the page.
type page struct {
	PageTableEntry
	mem []byte
}

// lookup returns the page table entry for the page containing the address.
func (m *Manager) lookup(address uint32) (*page, bool) {
	p, ok := m.pages[m.geometry.Number(address)]
	if !ok || !p.Present {
		return nil, false
	}
	return p, true
}

// PTE returns a copy of the page table entry for the page containing the
// address.
func (m *Manager) PTE(address uint32) (PageTableEntry, bool) {
	p, ok := m.lookup(address)
	if !ok {
		return PageTableEntry{}, false
	}
	return p.PageTableEntry, true
}

// IsExecutable returns true if the page containing the address is present
// and has the execute bit. It is a query and never faults.
func (m *Manager) IsExecutable(address uint32) bool {
	p, ok := m.lookup(address)
	return ok && p.Protection.Has(memorymap.Execute)
}

// DirtyPages returns the base address of every page that has been written to
// since it was committed or since the last call to ResetPageFlags(). The
// addresses are in ascending order.
func (m *Manager) DirtyPages() []uint32 {
	d := make([]uint32, 0)
	for n := range m.pages {
		if m.pages[n].Dirty {
			d = append(d, m.geometry.Address(n))
		}
	}
	slices.Sort(d)
	return d
}

// ResetPageFlags clears the dirty and accessed flags of every page.
func (m *Manager) ResetPageFlags() {
	for _, p := range m.pages {
		p.Dirty = false
		p.Accessed = false
	}
}
