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

// Package version reports the version of the program, taken from the
// information embedded in the binary by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// The name to use when referring to the application
const ApplicationName = "Bellum"

// number can be set with the linker:
//
//	go build -ldflags "-X github.com/xazalea/bellum-sub003/version.number=v1.0.0"
var number string

// Info describes the build of the program.
type Info struct {
	// the version number if one was set by the linker. "unreleased" if there
	// is vcs information and "local" if there is not. the latter can happen
	// when running with "go run ."
	Version string

	// the vcs revision suffixed with "+dirty" if the source was modified
	Revision string

	// the version was set by the linker
	Release bool

	GoVersion string
}

func (v Info) String() string {
	if v.Release {
		return fmt.Sprintf("%s %s", ApplicationName, v.Version)
	}
	return fmt.Sprintf("%s %s (%s) %s", ApplicationName, v.Version, v.Revision, v.GoVersion)
}

// Version returns the build information for the program.
var Version = sync.OnceValue(func() Info {
	var v Info
	var vcs bool
	var modified bool

	if info, ok := debug.ReadBuildInfo(); ok {
		v.GoVersion = info.GoVersion
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				v.Revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	if v.Revision == "" {
		v.Revision = "no revision information"
	} else if modified {
		v.Revision = fmt.Sprintf("%s+dirty", v.Revision)
	}

	switch {
	case number != "":
		v.Version = number
		v.Release = true
	case vcs:
		v.Version = "unreleased"
	default:
		v.Version = "local"
	}

	return v
})
