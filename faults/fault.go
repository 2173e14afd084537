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

package faults

import (
	"errors"
	"fmt"
)

// Category classifies the reason for a failed memory operation
type Category string

// List of valid Category values
const (
	// access to a virtual page that is not present
	PageFault Category = "page fault"

	// access to a present page that lacks the required protection bit
	AccessViolation Category = "access violation"

	// commit request exceeds the remaining physical capacity
	OutOfPhysicalMemory Category = "out of physical memory"

	// no free virtual range of the requested size exists
	OutOfVirtualAddressSpace Category = "out of virtual address space"

	// a caller specified address overlaps an existing region
	RegionConflict Category = "region conflict"

	// free or realloc of an address that is not currently allocated. this
	// includes a double free
	InvalidFree Category = "invalid free"

	// no free heap block is large enough for the request
	OutOfMemory Category = "out of memory"

	// zero sizes, ranges that run past the top of the address space, bad
	// configuration values
	InvalidArgument Category = "invalid argument"
)

// Fault is the error returned by every failing operation in the memory
// subsystem. Nothing that returns a Fault leaves memory in an inconsistent
// state, so a Fault is never fatal.
//
// An instruction interpreter can use the Category and Address fields to raise
// the equivalent guest exception.
type Fault struct {
	Category Category

	// description of the operation that triggered the fault. for example,
	// "read" or "malloc"
	Event string

	// the address and size of the access or request that caused the fault
	Address uint32
	Size    uint32
}

// New is the preferred method of initialisation for the Fault type.
func New(category Category, event string, address uint32, size uint32) *Fault {
	return &Fault{
		Category: category,
		Event:    event,
		Address:  address,
		Size:     size,
	}
}

func (f *Fault) Error() string {
	if f.Size == 0 {
		return fmt.Sprintf("%s: %s: %08x", f.Event, f.Category, f.Address)
	}
	return fmt.Sprintf("%s: %s: %08x (%d bytes)", f.Event, f.Category, f.Address, f.Size)
}

// As returns the Fault contained in the error chain. Returns nil if there is
// no Fault in the chain.
func As(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return nil
}

// Is returns true if there is a Fault of the specified category in the error
// chain.
func Is(err error, category Category) bool {
	f := As(err)
	return f != nil && f.Category == category
}
