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

// Package dump writes the structures of the memory subsystem as Graphviz
// graphs, for inspection when debugging. The contents of memory are not
// included in the graphs, only the bookkeeping.
//
// The output of each function can be rendered with the dot command. For
// example:
//
//	dot -Tsvg memory.dot > memory.svg
package dump
