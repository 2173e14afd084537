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

// Package logger is the logging system for the memory subsystem. Entries are
// tagged with the name of the component making the entry, for example "vmm"
// or "heap", and repeated entries are compressed into a single entry with a
// repeat count.
//
// Every component accepts a *Logger at construction. The logger is never a
// global: two memory contexts built by the same embedder have independent
// logs. A nil *Logger may be used wherever a logger is expected, in which
// case nothing is logged.
//
// The Permission interface lets the caller of Log() or Logf() decide at the
// point of logging whether the entry should be made. Use logger.Allow when an
// entry should always be made.
package logger
