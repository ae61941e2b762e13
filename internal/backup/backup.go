// Package backup writes timestamped copies of the data file and prunes old
// ones, either on demand or on a cron schedule.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appLog "minical/internal/log"
)

const suffix = "_data.json"

// Source is anything that can stream the current data file.
type Source interface {
	CopyTo(w io.Writer) error
}

// Snapshot copies src to <dir>/<unix nanoseconds>_data.json and then removes
// all but the newest keep snapshots. keep <= 0 disables pruning.
func Snapshot(src Source, dir string, keep int, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := filepath.Join(dir, fmt.Sprintf("%d%s", now.UnixNano(), suffix))
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if err := src.CopyTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, name); err != nil {
		os.Remove(tmpName)
		return "", err
	}

	if keep > 0 {
		if err := prune(dir, keep); err != nil {
			appLog.Warn("backup prune failed", "dir", dir, "err", err)
		}
	}
	return name, nil
}

// List returns snapshot paths in dir, oldest first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type snap struct {
		path string
		ts   int64
	}
	var snaps []snap
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		var ts int64
		if _, err := fmt.Sscanf(strings.TrimSuffix(e.Name(), suffix), "%d", &ts); err != nil {
			continue
		}
		snaps = append(snaps, snap{path: filepath.Join(dir, e.Name()), ts: ts})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ts < snaps[j].ts })

	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.path
	}
	return out, nil
}

func prune(dir string, keep int) error {
	snaps, err := List(dir)
	if err != nil {
		return err
	}
	for len(snaps) > keep {
		if err := os.Remove(snaps[0]); err != nil && !os.IsNotExist(err) {
			return err
		}
		appLog.Debug("backup pruned", "path", snaps[0])
		snaps = snaps[1:]
	}
	return nil
}

// Scheduler runs Snapshot on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler parses spec (standard five-field cron syntax or a
// descriptor such as "@daily") and registers a snapshot job.
func NewScheduler(spec string, src Source, dir string, keep int) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		path, err := Snapshot(src, dir, keep, time.Now())
		if err != nil {
			appLog.Error("scheduled backup failed", err, "dir", dir)
			return
		}
		appLog.Info("scheduled backup written", "path", path)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
