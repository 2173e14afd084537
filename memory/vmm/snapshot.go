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
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory/memorymap"
	"github.com/xazalea/bellum-sub003/memory/physical"
)

// RestoreError is the sentinel pattern for errors returned by Restore().
const RestoreError = "vmm: restore: %v"

// State is a complete copy of the manager's state. It is independent of the
// manager it was taken from and is suitable for serialisation.
type State struct {
	PageSize         uint32        `cbor:"pagesize"`
	PhysicalCapacity uint64        `cbor:"capacity"`
	Cursor           uint32        `cbor:"cursor"`
	Regions          []RegionState `cbor:"regions"`
	Pages            []PageState   `cbor:"pages"`
}

// RegionState is the saved form of a region. Data is a copy of the physical
// memory backing the region and is nil for a region that is not committed.
type RegionState struct {
	Region Region `cbor:"region"`
	Data   []byte `cbor:"data"`
}

// PageState is the saved form of a page table entry.
type PageState struct {
	Number uint32         `cbor:"number"`
	Entry  PageTableEntry `cbor:"entry"`
}

// Snapshot creates a copy of the manager in its current state.
func (m *Manager) Snapshot() *State {
	s := &State{
		PageSize:         m.geometry.PageSize,
		PhysicalCapacity: m.store.Capacity(),
		Cursor:           m.cursor,
		Regions:          make([]RegionState, 0, m.regions.Size()),
		Pages:            make([]PageState, 0, len(m.pages)),
	}

	it := m.regions.Iterator()
	for it.Next() {
		r := it.Value().(*region)
		rs := RegionState{Region: r.Region}
		if r.Committed {
			rs.Data = make([]byte, len(r.mem))
			copy(rs.Data, r.mem)
		}
		s.Regions = append(s.Regions, rs)

		// adding pages region by region means the pages are in ascending
		// order in the snapshot
		if r.Committed {
			n := m.geometry.Number(r.Base)
			for i := m.geometry.Pages(r.Size); i > 0; i-- {
				s.Pages = append(s.Pages, PageState{Number: n, Entry: m.pages[n].PageTableEntry})
				n++
			}
		}
	}

	return s
}

// Restore the manager to the state in the snapshot. The snapshot must have
// been taken from a manager with the same page size. The fault log is not
// part of a snapshot and is left unchanged.
//
// If the snapshot is inconsistent then an error is returned and the manager
// is not changed. Slices previously returned by Memory() refer to the old
// state and must be requested again.
func (m *Manager) Restore(s *State) error {
	if s.PageSize != m.geometry.PageSize {
		return curated.Errorf(RestoreError, fmt.Errorf("snapshot page size (%d) differs from manager page size (%d)", s.PageSize, m.geometry.PageSize))
	}

	store := physical.NewStore(s.PhysicalCapacity)
	regions := treemap.NewWith(utils.UInt32Comparator)
	pages := make(map[uint32]*page, len(s.Pages))

	var prev *region
	for _, rs := range s.Regions {
		r := &region{Region: rs.Region}

		if r.Size == 0 || r.Size%uint64(m.geometry.PageSize) != 0 || r.End() > memorymap.AddressSpace {
			return curated.Errorf(RestoreError, fmt.Errorf("region %s has an illegal size", r.Region))
		}
		if prev != nil && prev.End() > uint64(r.Base) {
			return curated.Errorf(RestoreError, fmt.Errorf("region %s overlaps region %s", r.Region, prev.Region))
		}

		if r.Committed {
			if uint64(len(rs.Data)) != r.Size {
				return curated.Errorf(RestoreError, fmt.Errorf("region %s has %d bytes of data", r.Region, len(rs.Data)))
			}
			mem, err := store.CarveAt(r.Physical, r.Size)
			if err != nil {
				return curated.Errorf(RestoreError, fmt.Errorf("region %s: %w", r.Region, err))
			}
			copy(mem, rs.Data)
			r.mem = mem
		}

		regions.Put(r.Base, r)
		prev = r
	}

	var expected uint32
	regions.Each(func(_ interface{}, v interface{}) {
		if r := v.(*region); r.Committed {
			expected += m.geometry.Pages(r.Size)
		}
	})
	if uint32(len(s.Pages)) != expected {
		return curated.Errorf(RestoreError, fmt.Errorf("%d pages in snapshot, expected %d", len(s.Pages), expected))
	}

	psz := uint64(m.geometry.PageSize)
	for _, pg := range s.Pages {
		a := m.geometry.Address(pg.Number)
		_, v := regions.Floor(a)
		if v == nil || !v.(*region).Contains(a) || !v.(*region).Committed {
			return curated.Errorf(RestoreError, fmt.Errorf("page %08x is not in a committed region", a))
		}
		if _, ok := pages[pg.Number]; ok {
			return curated.Errorf(RestoreError, fmt.Errorf("page %08x appears more than once", a))
		}
		r := v.(*region)
		o := uint64(a - r.Base)
		pages[pg.Number] = &page{
			PageTableEntry: pg.Entry,
			mem:            r.mem[o : o+psz : o+psz],
		}
	}

	m.store = store
	m.regions = regions
	m.pages = pages
	m.cursor = m.clampCursor(uint64(s.Cursor))

	m.log.Logf(logger.Allow, "vmm", "restored %d regions", regions.Size())

	return nil
}
