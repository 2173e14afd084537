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

// Package modalflag wraps the flag package of the Go standard library and adds
// program modes. A mode is a command line argument that selects a different
// operation of the program, each with its own set of flags. For example, the
// bellum command has the RUN, CONFIG and DUMP modes:
//
//	bellum -prefs "heap_size::1M" RUN
//	bellum CONFIG -toml
//
// Arguments are given to a Modes instance with NewArgs(). Flags and sub-modes
// for the current mode are added and then Parse() is called. After parsing,
// the selected mode is returned by Mode() and the flags of the next mode can
// be added after a call to NewMode():
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "CONFIG")
//	p, err := md.Parse()
//	...
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		verbose := md.AddBool("verbose", false, "print the log")
//		p, err := md.Parse()
//		...
//	}
//
// The first sub-mode is the default and is selected if the argument after the
// flags is not a sub-mode. Sub-mode comparisons are case insensitive.
//
// Help is printed automatically to the Output writer when the -help flag is
// given and Parse() returns ParseHelp.
package modalflag
