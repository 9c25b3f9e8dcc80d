// Command replay verifies a recorded run offline: it reloads the run's
// config from the index db, re-simulates from tick zero, and compares the
// resulting digests against the frame journal (and, if present, the
// checkpoint rows in the index).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"triocell/internal/persistence/framelog"
	"triocell/internal/persistence/indexdb"
	"triocell/internal/sim/engine"
)

func main() {
	var (
		dataDir = flag.String("data", "./data", "runtime data directory")
		dbPath  = flag.String("db", "", "index db path (default: <data>/index.db)")
		runID   = flag.String("run", "", "run id to verify (e.g. R1)")
		toTick  = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if strings.TrimSpace(*runID) == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}
	dp := strings.TrimSpace(*dbPath)
	if dp == "" {
		dp = filepath.Join(*dataDir, "index.db")
	}

	idx, err := indexdb.OpenSQLite(dp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index db:", err)
		os.Exit(1)
	}
	defer idx.Close()

	rec, err := idx.LoadRun(*runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load run:", err)
		os.Exit(1)
	}
	fmt.Printf("run %s client=%s backend=%s seed=%d grid=%dx%d init=%s\n",
		rec.RunID, rec.ClientID, rec.Backend, rec.Config.Seed,
		rec.Config.Width, rec.Config.Height, rec.Config.InitMode)

	entries, err := framelog.ReadRun(*dataDir, *runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read frame journal:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no journal entries for run", *runID)
		os.Exit(1)
	}
	// After a reset the tick sequence restarts; the index holds the config
	// of the latest restart, so only the final epoch is verifiable.
	epoch := framelog.LastEpoch(entries)
	if len(epoch) < len(entries) {
		fmt.Printf("run was reset; verifying final epoch (%d of %d frames)\n", len(epoch), len(entries))
	}
	entries = epoch

	checkpoints := map[uint64]string{}
	if rows, err := idx.Progress(*runID); err == nil {
		for _, r := range rows {
			checkpoints[r.Tick] = r.Digest
		}
	}

	sim := engine.NewSimulator(rec.Config)

	var checked, checkedCk uint64
	for _, e := range entries {
		if e.Tick == 0 {
			// Tick 0 is the initial frame; verify without stepping.
			if got := sim.Digest(); got != e.Digest {
				fmt.Fprintf(os.Stderr, "digest mismatch at tick 0: got=%s want=%s\n", got, e.Digest)
				os.Exit(1)
			}
			checked++
			continue
		}
		if *toTick != 0 && e.Tick > *toTick {
			break
		}
		for sim.TickCount() < e.Tick {
			sim.Step()
		}
		if sim.TickCount() != e.Tick {
			fmt.Fprintf(os.Stderr, "tick mismatch: journal=%d sim=%d\n", e.Tick, sim.TickCount())
			os.Exit(1)
		}
		got := sim.Digest()
		if got != e.Digest {
			fmt.Fprintf(os.Stderr, "digest mismatch at tick %d: got=%s want=%s\n", e.Tick, got, e.Digest)
			os.Exit(1)
		}
		checked++
		if want, ok := checkpoints[e.Tick]; ok {
			if want != got {
				fmt.Fprintf(os.Stderr, "checkpoint mismatch at tick %d: index=%s sim=%s\n", e.Tick, want, got)
				os.Exit(1)
			}
			checkedCk++
		}
	}

	fmt.Printf("replay ok: checked=%d frames, %d checkpoints (final tick=%d digest=%s)\n",
		checked, checkedCk, sim.TickCount(), sim.Digest())
}
