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

// Package paths contains functions to prepare paths to bellum resources, such
// as the default configuration file.
//
// The ResourcePath() function prepends the supplied resource with the
// resource directory. For example, the path to the default configuration file:
//
//	p := paths.ResourcePath("bellum.toml")
//
// If the directory ".bellum" is present in the program's current directory
// then that is the resource directory. Otherwise the resource directory is
// "bellum" in the user's config directory, as returned by os.UserConfigDir().
// On a Linux system, the path returned in the example above will be:
//
//	/home/user/.config/bellum/bellum.toml
//
// The existence of the resource is not checked.
package paths
