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

// Package vmm implements the virtual memory manager. The manager emulates the
// virtual memory of an operating system: a 32 bit virtual address space
// divided into pages, a page table and the physical memory backing committed
// pages.
//
// The address space is claimed with Allocate() and released with Free().
// Committed regions are accessed with Read() and Write(), which check the
// protection of the page being accessed. Protection can be changed with
// Protect().
//
// Each page moves through the following states:
//
//	Unmapped -> (commit) -> Present -> (protect) -> Present -> (free) -> Unmapped
//
// There are no other transitions. Accessing an unmapped page is a fault and
// not a crash. Every fault is returned as a *faults.Fault so that the caller,
// typically an instruction interpreter, can translate it into a guest
// exception. Faults are also recorded in the manager's fault log.
//
// Reads and writes never cross a page boundary. A caller that needs to access
// a range of memory that spans more than one page must loop, one page at a
// time. The bus package has helper functions for this.
//
// There is no demand paging. A committed page is always present until the
// region it belongs to is freed.
package vmm
