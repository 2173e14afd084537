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

// Command bellum exercises the emulated memory subsystem. It is useful for
// checking a configuration and for inspecting the structures of the subsystem.
//
// Modes:
//
//	RUN: run the demonstration scenario and print the results (default)
//	CONFIG: print the effective configuration as TOML
//	DUMP: run the scenario and write a Graphviz graph of the subsystem
//	STRESS: run a random workload and check the heap after every operation
//
// The configuration is the default configuration, optionally overlaid with a
// TOML file and then with a prefs string given with the -prefs flag. The TOML
// file is the file given with the -config flag or, if there is no flag, the
// bellum.toml file in the resource directory if it exists (see the paths
// package).
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory"
	"github.com/xazalea/bellum-sub003/memory/bus"
	"github.com/xazalea/bellum-sub003/memory/stress"
	"github.com/xazalea/bellum-sub003/modalflag"
	"github.com/xazalea/bellum-sub003/paths"
	"github.com/xazalea/bellum-sub003/prefs"
	"github.com/xazalea/bellum-sub003/statsview"
	"github.com/xazalea/bellum-sub003/version"
)

// the configuration file loaded from the resource directory if no
// configuration file is given on the command line
const defaultConfigFile = "bellum.toml"

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func main() {
	if err := launch(os.Stdout, os.Args[1:]); err != nil {
		fmt.Printf("* %s\n", err)
		os.Exit(10)
	}
}

func launch(output io.Writer, args []string) error {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.AddSubModes("RUN", "CONFIG", "DUMP", "STRESS")

	configFile := md.AddString("config", "", "TOML configuration file")
	prefsString := md.AddString("prefs", "", "preferences to apply over the configuration (key::value; key::value)")
	showVersion := md.AddBool("version", false, "print version information")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return nil
	case modalflag.ParseError:
		return err
	}

	if *showVersion {
		fmt.Fprintln(output, version.Version())
		return nil
	}

	if *configFile == "" {
		if f := paths.ResourcePath(defaultConfigFile); fileExists(f) {
			*configFile = f
		}
	}

	cfg := prefs.Default()
	if *configFile != "" {
		cfg, err = prefs.Load(*configFile)
		if err != nil {
			return err
		}
	}
	if *prefsString != "" {
		if err := cfg.Apply(*prefsString); err != nil {
			return err
		}
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, output, cfg)
	case "CONFIG":
		err = config(md, output, cfg)
	case "DUMP":
		err = dump(md, output, cfg)
	case "STRESS":
		err = stressTest(md, output, cfg)
	}

	if err != nil {
		return fmt.Errorf("error in %s mode: %w", md, err)
	}

	return nil
}

func run(md *modalflag.Modes, output io.Writer, cfg prefs.Config) error {
	md.NewMode()

	log := md.AddBool("log", false, "print the log after the scenario")
	snapshotFile := md.AddString("snapshot", "", "save a snapshot of the memory subsystem after the scenario. AUTO chooses a unique filename")

	var stats *bool
	if statsview.Available() {
		stats = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s) until interrupted", statsview.Address))
	}

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if stats != nil && *stats {
		stop := statsview.Launch(output, "")
		defer stop()
	}

	mem, err := memory.New(cfg, nil)
	if err != nil {
		return err
	}

	err = scenario(output, mem)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "\n%s\n", mem)

	if *log {
		fmt.Fprintln(output)
		mem.Log.Write(output)
		mem.VMM.Faults().WriteLog(output)
	}

	if *snapshotFile != "" {
		if strings.ToUpper(*snapshotFile) == "AUTO" {
			*snapshotFile = paths.UniqueFilename("snapshot", "")
		}

		var b bytes.Buffer
		if err := mem.Save(&b); err != nil {
			return err
		}
		if err := os.WriteFile(*snapshotFile, b.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(output, "snapshot saved to %s (%d bytes)\n", *snapshotFile, b.Len())
	}

	if stats != nil && *stats {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		<-ctx.Done()
	}

	return nil
}

func config(md *modalflag.Modes, output io.Writer, cfg prefs.Config) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	return cfg.Write(output)
}

func dump(md *modalflag.Modes, output io.Writer, cfg prefs.Config) error {
	md.NewMode()
	md.AdditionalHelp("the graph is written to the file named by the argument, or to stdout if there is no argument")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	mem, err := memory.New(cfg, logger.NewLogger(cfg.LogMaxEntries))
	if err != nil {
		return err
	}

	if err := scenario(io.Discard, mem); err != nil {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		mem.Dump(output)
	case 1:
		f, err := os.Create(md.GetArg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		mem.Dump(f)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func stressTest(md *modalflag.Modes, output io.Writer, cfg prefs.Config) error {
	md.NewMode()

	ops := md.AddInt("ops", 100000, "number of operations")
	maxSize := md.AddInt("max", 256, "largest allocation")
	seed := md.AddString("seed", "0", "seed for the random workload. zero chooses a seed")
	validate := md.AddBool("validate", true, "check heap invariants after every operation")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	sc := stress.Config{
		Operations: *ops,
		Validate:   *validate,
	}
	if *maxSize <= 0 {
		return fmt.Errorf("max allocation must be positive")
	}
	sc.MaxSize = uint32(*maxSize)
	sc.Seed, err = strconv.ParseUint(*seed, 0, 64)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	mem, err := memory.New(cfg, nil)
	if err != nil {
		return err
	}

	res, err := stress.Run(mem, sc)
	fmt.Fprintln(output, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "%s\n", mem)

	return nil
}

// scenario allocates, writes, reads and frees memory in the heap and then
// runs the garbage collector.
func scenario(output io.Writer, mem *memory.Memory) error {
	if mem.Heap == nil {
		return fmt.Errorf("scenario requires a heap")
	}

	fmt.Fprintf(output, "%s\n", version.Version())
	fmt.Fprintf(output, "heap: %08x (%d bytes)\n", mem.Heap.Base(), mem.Heap.Size())

	a, err := mem.Heap.Malloc(100)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "malloc(100): %08x\n", a)

	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	if _, err := bus.WriteBlock(mem, a, data); err != nil {
		return err
	}
	r, err := bus.ReadBlock(mem, a, uint32(len(data)))
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "write/read: %v\n", bytes.Equal(r, data))

	if err := mem.Heap.Free(a); err != nil {
		return err
	}
	b, err := mem.Heap.Malloc(100)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "free and malloc(100): %08x (reused: %v)\n", b, a == b)

	err = mem.Heap.Free(a + 8)
	fmt.Fprintf(output, "free(%08x): %v\n", a+8, err)

	_, err = mem.VMM.Read(0, 1)
	if f := faults.As(err); f != nil {
		fmt.Fprintf(output, "read(00000000): %s\n", f.Category)
	}

	o, err := mem.GC.AllocObject(64)
	if err != nil {
		return err
	}
	root, err := mem.GC.AllocObject(64)
	if err != nil {
		return err
	}
	mem.GC.AddRoot(root)
	n := mem.GC.Collect()
	fmt.Fprintf(output, "collect: %d freed (%s)\n", n, mem.GC.LastStats())

	q, err := mem.GC.AllocObject(64)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "alloc object(64): %08x (reused: %v)\n", q, o == q)
	fmt.Fprintf(output, "digest: %s\n", mem.Digest())

	return nil
}
