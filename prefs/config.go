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

package prefs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/memory/memorymap"
)

// Sentinel patterns for errors returned by the prefs package.
const (
	LoadError    = "prefs: load: %v"
	InvalidError = "prefs: invalid: %v"
)

// Config is the configuration of the memory subsystem.
type Config struct {
	// size of a page in bytes. must be a power of two
	PageSize uint32 `toml:"page_size"`

	// upper limit of committed memory in bytes
	PhysicalCapacity uint64 `toml:"physical_capacity"`

	// where the virtual memory manager begins searching for free address
	// space. zero selects the first page after the zero page
	AllocationCursor uint32 `toml:"allocation_cursor"`

	// maximum number of distinct entries in the fault log
	MaxFaults int `toml:"max_faults"`

	// base address and size of the heap. a base address of zero lets the
	// virtual memory manager choose. a size of zero means that there is no
	// heap and no garbage collector
	HeapBase uint32 `toml:"heap_base"`
	HeapSize uint32 `toml:"heap_size"`

	// the garbage collector treats every aligned word in a reachable object as
	// a possible reference to another object
	Trace bool `toml:"trace"`

	// log entries are written to stdout as they are logged
	LogEcho bool `toml:"log_echo"`

	// maximum number of entries kept by the logger
	LogMaxEntries int `toml:"log_max_entries"`
}

// Default returns the default configuration. A 16MiB heap at 0x10000000 in a
// 32bit address space with 4KiB pages and 512MiB of physical memory.
func Default() Config {
	return Config{
		PageSize:         memorymap.PageSize,
		PhysicalCapacity: memorymap.DefaultPhysicalCapacity,
		MaxFaults:        1024,
		HeapBase:         0x10000000,
		HeapSize:         16 << 20,
		LogMaxEntries:    256,
	}
}

// Load reads a TOML file over the default configuration. Keys missing from
// the file keep their default value. Unknown keys are an error. The loaded
// configuration is validated.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, curated.Errorf(LoadError, err)
	}
	defer f.Close()
	return Read(f)
}

// Read is the same as Load() but reads the TOML from an io.Reader.
func Read(r io.Reader) (Config, error) {
	cfg := Default()

	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, curated.Errorf(LoadError, err)
	}

	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, 0, len(u))
		for _, k := range u {
			keys = append(keys, k.String())
		}
		return Config{}, curated.Errorf(LoadError, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Write the configuration as TOML.
func (cfg Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks that the configuration can be used to create a memory
// subsystem.
func (cfg Config) Validate() error {
	if _, err := memorymap.NewGeometry(cfg.PageSize); err != nil {
		return curated.Errorf(InvalidError, err)
	}
	if cfg.PhysicalCapacity == 0 {
		return curated.Errorf(InvalidError, "physical capacity is zero")
	}
	if uint64(cfg.HeapSize) > cfg.PhysicalCapacity {
		return curated.Errorf(InvalidError, fmt.Sprintf("heap size (%d) is larger than physical capacity (%d)", cfg.HeapSize, cfg.PhysicalCapacity))
	}
	if uint64(cfg.HeapBase)+uint64(cfg.HeapSize) > memorymap.AddressSpace {
		return curated.Errorf(InvalidError, fmt.Sprintf("heap at %08x (%d bytes) does not fit in the address space", cfg.HeapBase, cfg.HeapSize))
	}
	if cfg.MaxFaults < 0 {
		return curated.Errorf(InvalidError, "max faults is negative")
	}
	if cfg.LogMaxEntries < 0 {
		return curated.Errorf(InvalidError, "log max entries is negative")
	}
	return nil
}

func (cfg Config) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("page size: %d\n", cfg.PageSize))
	s.WriteString(fmt.Sprintf("physical capacity: %d\n", cfg.PhysicalCapacity))
	s.WriteString(fmt.Sprintf("allocation cursor: %08x\n", cfg.AllocationCursor))
	s.WriteString(fmt.Sprintf("heap: %08x (%d bytes)\n", cfg.HeapBase, cfg.HeapSize))
	s.WriteString(fmt.Sprintf("trace: %v", cfg.Trace))
	return s.String()
}
