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

// Package prefs holds the configuration of the memory subsystem.
//
// Configuration begins with the values returned by Default(). A TOML file can
// be loaded over the defaults with Load() and individual values can then be
// overridden with a prefs string given to the Apply() function of Config.
//
// A prefs string is a list of key/value pairs. Keys are separated from values
// by a double colon and pairs are separated by a semicolon. For example:
//
//	page_size::4096; heap_size::16MiB; log_echo::true
//
// The keys are the same as the keys used in the TOML file. Size values may
// have one of the suffixes K, KiB, M, MiB, G or GiB. Address values may be
// given in hexadecimal with the 0x prefix.
package prefs
