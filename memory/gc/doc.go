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

// Package gc implements a non-moving, stop-the-world mark and sweep garbage
// collector for objects allocated from a heap.Allocator.
//
// Objects are allocated with AllocObject() and are recorded in the
// collector's registry. An object survives a collection if it is reachable.
// By default an object is reachable only if its address is in the root set.
// The collector knows nothing about the contents of objects and so does not
// follow references between them.
//
// If the embedder knows how references are stored in objects then it can
// install a Tracer with the WithTracer() option. The Tracer is given the
// memory of each reachable object and returns the addresses it refers to. With
// a Tracer installed the mark phase follows references transitively. The
// ScanWords() function is a conservative Tracer that treats every aligned
// 32-bit word as a possible reference.
//
// Collect() always runs a complete mark and sweep. Objects that are not
// reachable are returned to the heap.
package gc
