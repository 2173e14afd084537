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

// Package stress runs a random workload against the memory subsystem and
// checks the invariants of the heap after every operation.
//
// The workload is a mix of Malloc(), Free() and Realloc() calls on the heap
// and of object allocations, root changes and collections on the garbage
// collector. The contents of every live allocation are filled with a pattern
// and the pattern is checked before the allocation is freed, so a heap that
// loses data or hands out overlapping blocks is detected.
//
// Workloads are reproducible. The random numbers for each operation depend
// only on the seed and the operation number.
package stress
