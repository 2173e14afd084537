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

package paths_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/xazalea/bellum-sub003/paths"
	"github.com/xazalea/bellum-sub003/test"
)

func TestPaths(t *testing.T) {
	// the test runs in a temporary directory containing the local resource
	// directory
	wd, err := os.Getwd()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	test.DemandSuccess(t, os.Mkdir(".bellum", 0o700))

	test.ExpectEquality(t, paths.ResourcePath("foo/bar", "baz"), filepath.Join(".bellum", "foo", "bar", "baz"))
	test.ExpectEquality(t, paths.ResourcePath("foo/bar", ""), filepath.Join(".bellum", "foo", "bar"))
	test.ExpectEquality(t, paths.ResourcePath("", "baz"), filepath.Join(".bellum", "baz"))
	test.ExpectEquality(t, paths.ResourcePath("", ""), ".bellum")
}

func TestUniqueFilename(t *testing.T) {
	m := regexp.MustCompile(`^snapshot_heap_\d{8}_\d{6}$`)
	test.ExpectSuccess(t, m.MatchString(paths.UniqueFilename("snapshot", " heap ")))

	m = regexp.MustCompile(`^snapshot_\d{8}_\d{6}$`)
	test.ExpectSuccess(t, m.MatchString(paths.UniqueFilename("snapshot", "")))
}
