// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gioui.org/touch/config"
	"gioui.org/touch/gesture"
	"gioui.org/touch/internal/di"
	"gioui.org/touch/internal/trace"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/platform"
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace>",
	Short: "Replay a recorded trace and report the gestures",
	Long: `Replay feeds every step of a trace to one engine per element and
prints the number of results of each kind. Long presses only fire
with --realtime, which paces the steps by their timestamps.`,
	Args: cobra.ExactArgs(1),
	RunE: executeReplay,
}

var (
	replayRealtime bool
	replayProgress bool
)

func init() {
	replayCmd.Flags().BoolVar(&replayRealtime, "realtime", false, "Pace steps by their recorded time")
	replayCmd.Flags().BoolVar(&replayProgress, "progress", false, "Show a progress bar")
}

func executeReplay(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	c, err := container(log)
	if err != nil {
		return err
	}
	cfg, err := di.Get[*config.Config](c)
	if err != nil {
		return err
	}
	tr, err := trace.Load(args[0])
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if replayProgress {
		bar = progressbar.Default(int64(len(tr.Steps)), "replaying")
	}
	counts, err := replay(log, cfg, tr, replayOptions{realtime: replayRealtime, bar: bar})
	if err != nil {
		return err
	}
	printCounts(cmd.OutOrStdout(), counts)
	return nil
}

type replayOptions struct {
	realtime bool
	bar      *progressbar.ProgressBar
	// sleep waits between realtime steps.
	sleep func(time.Duration)
}

// replay runs tr and returns the number of results per result name.
func replay(log *zap.SugaredLogger, cfg *config.Config, tr *trace.Trace, opts replayOptions) (map[string]int, error) {
	if opts.sleep == nil {
		opts.sleep = time.Sleep
	}
	var mu sync.Mutex
	counts := make(map[string]int)
	engines := make(map[string]*gesture.Engine)
	defer func() {
		for _, eng := range engines {
			eng.Dispose()
		}
	}()
	engine := func(element string) *gesture.Engine {
		if eng, ok := engines[element]; ok {
			return eng
		}
		elog := log.With("element", element)
		eng := gesture.New(elog, cfg.Resolve(element))
		eng.SetListener(gesture.ListenerFunc(func(k pointer.Kind, e *gesture.Event, r gesture.Result) {
			mu.Lock()
			counts[r.String()]++
			mu.Unlock()
			elog.Infow(r.String(), "kind", k, "id", e.PointerID, "x", e.Position.X, "y", e.Position.Y,
				"dx", e.Motion.Delta.X, "dy", e.Motion.Delta.Y)
		}))
		engines[element] = eng
		return eng
	}

	var prev time.Duration
	for i, st := range tr.Steps {
		s, err := st.Sample()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if opts.realtime && i > 0 && s.Time > prev {
			opts.sleep(s.Time - prev)
		}
		prev = s.Time
		platform.Feed(log, engine(tr.ElementOf(st)), s)
		if opts.bar != nil {
			opts.bar.Add(1)
		}
	}
	if opts.realtime {
		// Let a pending long press fire.
		longest := time.Duration(0)
		for element := range engines {
			if lp := cfg.Resolve(element).LongPress; lp > longest {
				longest = lp
			}
		}
		if longest == 0 {
			longest = gesture.DefaultLongPress
		}
		opts.sleep(longest)
	}
	mu.Lock()
	defer mu.Unlock()
	return counts, nil
}

func printCounts(w io.Writer, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "%-14s %d\n", n, counts[n])
	}
}
