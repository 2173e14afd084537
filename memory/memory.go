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

package memory

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/digest"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory/dump"
	"github.com/xazalea/bellum-sub003/memory/gc"
	"github.com/xazalea/bellum-sub003/memory/heap"
	"github.com/xazalea/bellum-sub003/memory/snapshot"
	"github.com/xazalea/bellum-sub003/memory/vmm"
	"github.com/xazalea/bellum-sub003/prefs"
)

// Sentinel patterns for errors returned by the memory package.
const (
	SetupError   = "memory: %v"
	RestoreError = "memory: restore: %v"
)

// Memory is an instance of the memory subsystem.
//
// The Heap and GC fields are nil if the configuration has a heap size of
// zero.
//
// Memory is not safe for concurrent use. It assumes a single logical caller.
type Memory struct {
	Log  *logger.Logger
	VMM  *vmm.Manager
	Heap *heap.Allocator
	GC   *gc.Collector

	cfg prefs.Config
}

// New is the preferred method of initialisation for the Memory type. The
// configuration is validated before use.
//
// If log is nil then a new logger is created with the maximum number of
// entries in the configuration.
func New(cfg prefs.Config, log *logger.Logger) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	if log == nil {
		log = logger.NewLogger(cfg.LogMaxEntries)
	}
	if cfg.LogEcho {
		log.SetEcho(os.Stdout, false)
	}

	mem := &Memory{
		Log: log,
		cfg: cfg,
	}

	var err error

	mem.VMM, err = vmm.NewManager(vmm.Config{
		PageSize:         cfg.PageSize,
		PhysicalCapacity: cfg.PhysicalCapacity,
		AllocationCursor: cfg.AllocationCursor,
		MaxFaults:        cfg.MaxFaults,
	}, log)
	if err != nil {
		return nil, curated.Errorf(SetupError, err)
	}

	if cfg.HeapSize > 0 {
		mem.Heap, err = heap.NewAllocator(mem.VMM, cfg.HeapBase, cfg.HeapSize, log)
		if err != nil {
			return nil, curated.Errorf(SetupError, err)
		}

		var opts []gc.Option
		if cfg.Trace {
			opts = append(opts, gc.WithTracer(gc.ScanWords))
		}
		mem.GC = gc.NewCollector(mem.Heap, log, opts...)
	}

	return mem, nil
}

// Config returns the configuration used to create the Memory.
func (mem *Memory) Config() prefs.Config {
	return mem.cfg
}

// Read is a pass-through to the Read() function of the virtual memory
// manager. Memory implements the bus.Memory interface.
func (mem *Memory) Read(address uint32, size uint32) ([]byte, error) {
	return mem.VMM.Read(address, size)
}

// Write is a pass-through to the Write() function of the virtual memory
// manager. Memory implements the bus.Memory interface.
func (mem *Memory) Write(address uint32, data []byte) (int, error) {
	return mem.VMM.Write(address, data)
}

// IsExecutable is a pass-through to the IsExecutable() function of the
// virtual memory manager.
func (mem *Memory) IsExecutable(address uint32) bool {
	return mem.VMM.IsExecutable(address)
}

// Snapshot creates a copy of the subsystem in its current state.
func (mem *Memory) Snapshot() *snapshot.State {
	s := &snapshot.State{
		Version: snapshot.Version,
		VMM:     mem.VMM.Snapshot(),
	}
	if mem.Heap != nil {
		s.Heap = mem.Heap.Snapshot()
		s.GC = mem.GC.Snapshot()
	}
	return s
}

// Restore the subsystem from a snapshot. The snapshot must have been taken
// from a Memory with the same heap. If any layer refuses the snapshot then
// the subsystem is returned to the state it was in before Restore() was
// called.
func (mem *Memory) Restore(s *snapshot.State) error {
	if (s.Heap == nil) != (mem.Heap == nil) {
		return curated.Errorf(RestoreError, "snapshot does not match heap configuration")
	}

	// the layers are restored one at a time so keep a copy of the current
	// state for rollback
	prev := mem.Snapshot()

	if err := mem.restore(s); err != nil {
		if rerr := mem.restore(prev); rerr != nil {
			// this should never happen because prev is a snapshot of a
			// consistent state
			mem.Log.Logf(logger.Allow, "memory", "rollback failed: %v", rerr)
		}
		return curated.Errorf(RestoreError, err)
	}

	mem.Log.Log(logger.Allow, "memory", "restored snapshot")

	return nil
}

func (mem *Memory) restore(s *snapshot.State) error {
	if err := mem.VMM.Restore(s.VMM); err != nil {
		return err
	}
	if mem.Heap != nil {
		if err := mem.Heap.Restore(s.Heap); err != nil {
			return err
		}
		if err := mem.GC.Restore(s.GC); err != nil {
			return err
		}
	}
	return nil
}

// Save writes a snapshot of the subsystem to the io.Writer.
func (mem *Memory) Save(w io.Writer) error {
	return snapshot.Write(w, mem.Snapshot())
}

// Load reads a snapshot from the io.Reader and restores the subsystem from
// it.
func (mem *Memory) Load(r io.Reader) error {
	s, err := snapshot.Read(r)
	if err != nil {
		return err
	}
	return mem.Restore(s)
}

// Dump writes a Graphviz graph of the subsystem to the io.Writer.
func (mem *Memory) Dump(w io.Writer) {
	dump.All(w, mem.VMM, mem.Heap, mem.GC)
}

// Digest returns a fingerprint of the regions, protection and contents of the
// virtual memory.
func (mem *Memory) Digest() string {
	dig := digest.NewMemory()
	dig.Update(mem.VMM)
	return dig.Hash()
}

func (mem *Memory) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("vmm: %s", mem.VMM.Stats()))
	if mem.Heap != nil {
		s.WriteString(fmt.Sprintf("\nheap: %s", mem.Heap.Stats()))
		s.WriteString(fmt.Sprintf("\ngc: %d objects, %d roots, %d collections",
			mem.GC.Objects(), len(mem.GC.Roots()), mem.GC.Cycles()))
	}
	return s.String()
}
