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

package paths

import (
	"os"
	"path/filepath"
)

// the local resource directory. note that we don't use this value directly
// except in the basePath() function
const localResourcePath = ".bellum"

// ResourcePath returns the resource string prepended with the resource
// directory. Empty parts of the resource are ignored.
func ResourcePath(resource ...string) string {
	p := make([]string, 0, len(resource)+1)
	p = append(p, basePath())
	p = append(p, resource...)
	return filepath.Join(p...)
}

// basePath returns localResourcePath if it exists in the current directory or
// the bellum directory in the user's config directory if it does not.
func basePath() string {
	if _, err := os.Stat(localResourcePath); err == nil {
		return localResourcePath
	}

	cnf, err := os.UserConfigDir()
	if err != nil {
		return localResourcePath
	}

	return filepath.Join(cnf, localResourcePath[1:])
}
