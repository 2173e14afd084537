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

package memorymap

import "strings"

// Protection is the set of access permissions for a page of memory.
type Protection uint8

// List of protection bits. A page with NoAccess is present but cannot be read,
// written or executed.
const (
	Read Protection = 1 << iota
	Write
	Execute

	NoAccess    Protection = 0
	ReadWrite              = Read | Write
	ReadExecute            = Read | Execute
	All                    = Read | Write | Execute
)

// Has returns true if every bit in q is also in p.
func (p Protection) Has(q Protection) bool {
	return p&q == q
}

// String returns the protection in the style of a unix file mode. For
// example, "rw-".
func (p Protection) String() string {
	s := strings.Builder{}
	if p.Has(Read) {
		s.WriteRune('r')
	} else {
		s.WriteRune('-')
	}
	if p.Has(Write) {
		s.WriteRune('w')
	} else {
		s.WriteRune('-')
	}
	if p.Has(Execute) {
		s.WriteRune('x')
	} else {
		s.WriteRune('-')
	}
	return s.String()
}

// AllocationType specifies what an allocation request does to the address
// space.
type AllocationType uint8

// List of allocation types. Reserve claims a range of the virtual address
// space. Commit also gives the range physical backing and page table entries.
// A Commit request reserves implicitly.
const (
	Reserve AllocationType = 1 << iota
	Commit

	ReserveCommit = Reserve | Commit
)

// Commits returns true if the allocation type requests physical backing.
func (t AllocationType) Commits() bool {
	return t&Commit == Commit
}

func (t AllocationType) String() string {
	switch {
	case t.Commits():
		return "commit"
	case t&Reserve == Reserve:
		return "reserve"
	}
	return "none"
}
