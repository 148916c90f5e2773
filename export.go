package docsync

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/conflict"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/projection"
)

// Compile-time interface check to ensure proper implementation.
var _ Projector = (*client)(nil)

// Projector derives views of the current snapshot.
type Projector interface {
	// Filter returns the records matching f, in snapshot order
	Filter(f projection.Filter) []articles.Record

	// Stats summarizes the records matching f
	Stats(f projection.Filter, topN int) projection.Stats

	// Conflict reports the record a candidate would duplicate
	Conflict(candidate articles.Record, excludeIdentity string) (conflict.Conflict, bool)

	// CSV serializes the records matching f
	CSV(f projection.Filter) string

	// Export writes the records matching f to a CSV file in dir
	Export(dir string, f projection.Filter) (string, error)
}

// Filter applies f to the current snapshot.
func (c *client) Filter(f projection.Filter) []articles.Record {
	snap := c.Snapshot()
	return f.Apply(snap.Records, snap.Columns)
}

// Stats counts the filtered records by category and ranks them by views.
// The filter's date range also bounds the view ranking.
func (c *client) Stats(f projection.Filter, topN int) projection.Stats {
	snap := c.Snapshot()
	if topN <= 0 {
		topN = constants.DefaultTopN
	}
	records := projection.Filter{Term: f.Term, Category: f.Category, LinkedIn: f.LinkedIn}.Apply(snap.Records, snap.Columns)
	return projection.Summarize(records, snap.Columns, topN, f.Range)
}

// Conflict checks candidate against the current snapshot.
func (c *client) Conflict(candidate articles.Record, excludeIdentity string) (conflict.Conflict, bool) {
	snap := c.Snapshot()
	return conflict.Find(candidate, snap.Records, snap.Columns, excludeIdentity)
}

// CSV renders the filtered records with the snapshot's header set.
func (c *client) CSV(f projection.Filter) string {
	snap := c.Snapshot()
	return projection.CSV(f.Apply(snap.Records, snap.Columns), snap.Headers)
}

// Export writes the filtered records to <catalog>_Filtered_<date>.csv in
// dir, replacing any file of that name atomically, and returns the path.
func (c *client) Export(dir string, f projection.Filter) (string, error) {
	snap := c.Snapshot()
	records := f.Apply(snap.Records, snap.Columns)
	if len(records) == 0 {
		return "", errors.NewValidationError("filter", nil, "no records to export")
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	path := filepath.Join(dir, projection.Filename(c.options.catalogName, c.options.now()))

	tmp, err := os.CreateTemp(dir, ".export_*.csv")
	if err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	w := bufio.NewWriter(tmp)
	if err := projection.WriteCSV(w, records, snap.Headers); err != nil {
		_ = tmp.Close()
		return "", errors.WrapIO("write", tmpPath, err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return "", errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		return "", errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", errors.WrapIO("rename", path, err)
	}
	return path, nil
}
