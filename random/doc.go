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

// Package random provides reproducible random numbers for workloads run
// against the memory subsystem.
//
// The numbers returned by a Random instance depend on a base seed and on the
// current value of a Position. The Position is supplied by the caller and is
// usually a count of operations performed so far. The same base seed and the
// same position will always produce the same numbers, which means that a
// single failing operation in a long workload can be replayed in isolation.
//
// The base seed is chosen when the program starts and can be replaced by
// setting the BaseSeed field. If the same random numbers are required every
// single time then set ZeroSeed to true. This is useful for testing purposes.
package random
