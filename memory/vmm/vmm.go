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
	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory/memorymap"
	"github.com/xazalea/bellum-sub003/memory/physical"
)

// Config for a new Manager. The zero value of each field selects the default.
type Config struct {
	// size of a page in bytes. must be a power of two
	PageSize uint32

	// upper limit of committed memory in bytes
	PhysicalCapacity uint64

	// the address at which the search for free virtual address space begins
	// when Allocate() is called without an address. will be rounded up to a
	// page boundary. the zero page is never allocated by a search because
	// address zero indicates failure
	AllocationCursor uint32

	// maximum number of distinct entries in the fault log
	MaxFaults int
}

// the default size of the fault log
const defaultMaxFaults = 1024

// Manager is the virtual memory manager. It owns the physical store, the page
// table and the list of memory regions.
//
// The Manager assumes a single logical caller. It performs no locking and if
// it is to be used from more than one goroutine then the embedder must
// serialise access to it.
type Manager struct {
	log *logger.Logger

	geometry memorymap.Geometry
	store    *physical.Store

	// regions keyed by base address
	regions *treemap.Map

	// page table keyed by virtual page number
	pages map[uint32]*page

	// where the next search for free address space begins
	cursor uint32

	faults faults.Log
}

// NewManager is the preferred method of initialisation for the Manager type.
// The logger may be nil.
func NewManager(cfg Config, log *logger.Logger) (*Manager, error) {
	if cfg.PageSize == 0 {
		cfg.PageSize = memorymap.PageSize
	}
	if cfg.PhysicalCapacity == 0 {
		cfg.PhysicalCapacity = memorymap.DefaultPhysicalCapacity
	}
	if cfg.MaxFaults == 0 {
		cfg.MaxFaults = defaultMaxFaults
	}

	g, err := memorymap.NewGeometry(cfg.PageSize)
	if err != nil {
		return nil, faults.New(faults.InvalidArgument, "vmm", 0, cfg.PageSize)
	}

	m := &Manager{
		log:      log,
		geometry: g,
		store:    physical.NewStore(cfg.PhysicalCapacity),
		regions:  treemap.NewWith(utils.UInt32Comparator),
		pages:    make(map[uint32]*page),
		faults:   faults.NewLog(cfg.MaxFaults),
	}
	m.cursor = m.clampCursor(uint64(cfg.AllocationCursor))

	log.Logf(logger.Allow, "vmm", "page size: %d", g.PageSize)
	log.Logf(logger.Allow, "vmm", "physical capacity: %d", cfg.PhysicalCapacity)

	return m, nil
}

// clampCursor aligns the cursor to a page boundary and keeps it out of the
// zero page and inside the address space.
func (m *Manager) clampCursor(c uint64) uint32 {
	c = m.geometry.Align(c)
	if c == 0 || c >= memorymap.AddressSpace {
		return m.geometry.PageSize
	}
	return uint32(c)
}

// Geometry returns the page geometry in use by the manager.
func (m *Manager) Geometry() memorymap.Geometry {
	return m.geometry
}

// Faults returns the log of faults that have occurred. The log belongs to the
// manager and can be cleared by the caller.
func (m *Manager) Faults() *faults.Log {
	return &m.faults
}

// fault records a new fault in the fault log and returns it as an error.
func (m *Manager) fault(category faults.Category, event string, address uint32, size uint32) error {
	return m.faults.Record(faults.New(category, event, address, size))
}

// Stats summarises the state of the manager.
type Stats struct {
	Regions          int
	CommittedRegions int
	Pages            int
	DirtyPages       int
	PhysicalUsed     uint64
	PhysicalCapacity uint64
	Faults           int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d regions (%d committed), %d pages (%d dirty), %d/%d physical bytes, %d faults",
		s.Regions, s.CommittedRegions, s.Pages, s.DirtyPages, s.PhysicalUsed, s.PhysicalCapacity, s.Faults)
}

// Stats returns a summary of the current state of the manager.
func (m *Manager) Stats() Stats {
	s := Stats{
		Regions:          m.regions.Size(),
		Pages:            len(m.pages),
		PhysicalUsed:     m.store.Used(),
		PhysicalCapacity: m.store.Capacity(),
	}

	m.regions.Each(func(_ interface{}, v interface{}) {
		if v.(*region).Committed {
			s.CommittedRegions++
		}
	})

	for _, p := range m.pages {
		if p.Dirty {
			s.DirtyPages++
		}
	}

	for _, e := range m.faults.Entries {
		s.Faults += e.Count
	}

	return s
}
