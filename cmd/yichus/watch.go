package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/parsers"
	"github.com/ersonp/yichus-core/internal/logging"
)

func newWatchCmd() *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "watch <file> <from-person-id> <to-person-id>",
		Short: "Recompute a status whenever an events file changes",
		Long: `Folds the event file into an in-memory timeline and prints the status of
the pair at the latest slice, then recomputes on every save. The file is
never written to the tree store; use import for that.

Example:
  yichus watch family.csv p1 p2 --profile beis-hillel`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], args[1], args[2], profileName)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Opinion profile to follow (default: the default profile)")

	return cmd
}

func runWatch(cmd *cobra.Command, path, fromID, toID, profileName string) error {
	ctx := cmd.Context()

	if parsers.ForFile(path) == nil {
		return errors.Newf("unsupported file type %q (expected .json or .csv)", filepath.Ext(path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolving path")
	}

	return withWorkspace(func(d *internalDeps) error {
		profile, err := d.profileService.Resolve(ctx, profileName)
		if err != nil {
			return err
		}
		if profileName == "" {
			profileName = services.DefaultProfileName
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.Wrap(err, "creating watcher")
		}
		defer watcher.Close()

		// Watch the directory, not the file: editors that save by
		// rename-and-replace would otherwise drop the watch after the
		// first save.
		if err := watcher.Add(filepath.Dir(absPath)); err != nil {
			return errors.Wrap(err, "watching directory")
		}

		fmt.Printf("Watching %s for %s -> %s (profile %s). Ctrl-C to stop.\n", path, fromID, toID, profileName)
		watchCompute(absPath, fromID, toID, profile, d.statusService)

		base := filepath.Base(absPath)
		timer := time.NewTimer(watchDebounce)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nStopped watching.")
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)

			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logging.Warnw("watch error", "error", werr)

			case <-timer.C:
				watchCompute(absPath, fromID, toID, profile, d.statusService)
			}
		}
	})
}

// watchCompute parses the file, folds it, and prints one status line.
// Problems are printed, never returned: a half-saved file should not end
// the watch.
func watchCompute(path, fromID, toID string, profile *entities.OpinionProfile, statusService *services.StatusService) {
	now := time.Now().Format("15:04:05")

	file, err := os.Open(path)
	if err != nil {
		fmt.Printf("[%s] %v\n", now, err)
		return
	}
	raws, err := parsers.ForFile(path).Parse(file)
	file.Close()
	if err != nil {
		fmt.Printf("[%s] %v\n", now, err)
		return
	}

	graph, problems := foldRawEvents(raws)
	for _, p := range problems {
		fmt.Printf("[%s] %s\n", now, p)
	}
	if graph.SliceCount() == 0 {
		fmt.Printf("[%s] no events in %s\n", now, filepath.Base(path))
		return
	}

	cs, err := statusService.ComputeStatus(graph, fromID, toID, graph.LatestSlice(), profile)
	if err != nil {
		fmt.Printf("[%s] %v\n", now, err)
		return
	}

	if cs.Primary == nil {
		fmt.Printf("[%s] slice %d: unrestricted; marriage permitted\n", now, cs.Slice)
		return
	}
	verdict := "permitted"
	if !cs.Permitted() {
		verdict = "forbidden"
	}
	fmt.Printf("[%s] slice %d: %s; marriage %s\n", now, cs.Slice, describeStatus(*cs.Primary), verdict)
}

// foldRawEvents builds an in-memory timeline from raw records, staging them
// the way import stages against an empty tree: records without a slice all
// land on slice 0, explicit slices land where they say. Records that fail
// shape validation are reported and dropped.
func foldRawEvents(raws []entities.RawEvent) (*entities.TemporalGraph, []string) {
	type staged struct {
		event entities.Event
		slice int
	}

	var problems []string
	events := make([]staged, 0, len(raws))

	for i := range raws {
		raw := &raws[i]
		line := raw.LineNum
		if line == 0 {
			line = i + 1
		}

		slice := 0
		if raw.Slice != nil {
			if *raw.Slice < 0 {
				problems = append(problems, fmt.Sprintf("line %d: slice %d is negative", line, *raw.Slice))
				continue
			}
			slice = *raw.Slice
		}

		event, err := raw.ToEvent()
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		events = append(events, staged{event: event, slice: slice})
	}

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].slice < events[b].slice
	})

	graph := &entities.TemporalGraph{ID: "watch"}
	for _, st := range events {
		if err := graph.AppendAt(st.slice, []entities.Event{st.event}); err != nil {
			problems = append(problems, err.Error())
		}
	}
	return graph, problems
}
