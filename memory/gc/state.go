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

package gc

import (
	"fmt"
	"maps"
	"slices"

	"github.com/xazalea/bellum-sub003/curated"
)

// Sentinel pattern for errors returned by Restore().
const RestoreError = "gc: restore: %v"

// ObjectState is an object in the registry at the time of a snapshot.
type ObjectState struct {
	Address uint32 `cbor:"address"`
	Size    uint32 `cbor:"size"`
}

// State is a copy of the collector's registry and root set.
type State struct {
	Objects []ObjectState `cbor:"objects"`
	Roots   []uint32      `cbor:"roots"`
	Cycles  int           `cbor:"cycles"`
}

// Snapshot creates a copy of the collector in its current state.
func (c *Collector) Snapshot() *State {
	s := &State{
		Objects: make([]ObjectState, 0, len(c.registry)),
		Roots:   c.Roots(),
		Cycles:  c.cycles,
	}
	for _, a := range slices.Sorted(maps.Keys(c.registry)) {
		s.Objects = append(s.Objects, ObjectState{Address: a, Size: c.registry[a].size})
	}
	return s
}

// Restore the collector from a snapshot. The heap must already have been
// restored from the snapshot taken at the same time. Every object in the
// snapshot must be an allocation in the heap that is large enough for the
// object. The collector is not changed if the snapshot is refused.
func (c *Collector) Restore(s *State) error {
	registry := make(map[uint32]*object, len(s.Objects))
	for _, o := range s.Objects {
		sz, ok := c.heap.BlockSize(o.Address)
		if !ok || sz < o.Size {
			return curated.Errorf(RestoreError, fmt.Errorf("object at %08x is not allocated in the heap", o.Address))
		}
		if _, ok := registry[o.Address]; ok {
			return curated.Errorf(RestoreError, fmt.Errorf("duplicate object at %08x", o.Address))
		}
		registry[o.Address] = &object{size: o.Size}
	}

	roots := make(map[uint32]struct{}, len(s.Roots))
	for _, r := range s.Roots {
		roots[r] = struct{}{}
	}

	c.registry = registry
	c.roots = roots
	c.cycles = s.Cycles
	c.last = Stats{}

	return nil
}
