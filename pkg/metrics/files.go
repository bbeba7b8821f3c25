// Package metrics provides a thin, file-backed mechanism for recording
// operational counters locally, for simple deployments that don't run a
// full observability stack.
package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tzrikka/xdg"
)

const (
	ConfigDirName          = "undertow"
	DefaultConnectionsFile = "connections.csv"
	DefaultBroadcastsFile  = "broadcasts.csv"
)

var (
	muConn      sync.Mutex
	muBroadcast sync.Mutex
)

// RecordConnection appends a row describing one accepted connection.
func RecordConnection(l zerolog.Logger, t time.Time, connID, remoteAddr string) {
	muConn.Lock()
	defer muConn.Unlock()

	record := []string{t.Format(time.RFC3339), connID, remoteAddr}
	writeLineToFile(l, DefaultConnectionsFile, record)
}

// RecordBroadcast appends a row describing one broadcast fan-out: the
// number of connections a message was sent to, and how many of those
// sends failed.
func RecordBroadcast(l zerolog.Logger, t time.Time, recipients, failures int) {
	muBroadcast.Lock()
	defer muBroadcast.Unlock()

	record := []string{t.Format(time.RFC3339), strconv.Itoa(recipients), strconv.Itoa(failures)}
	writeLineToFile(l, DefaultBroadcastsFile, record)
}

func writeLineToFile(l zerolog.Logger, filename string, record []string) {
	path, err := xdg.CreateFile(xdg.DataHome, ConfigDirName, filename)
	if err != nil {
		l.Error().Err(err).Str("file", filename).Msg("failed to resolve metrics file path")
		return
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_WRONLY, 0o644) //gosec:disable G304 // Resolved via xdg.
	if err != nil {
		l.Error().Err(err).Str("file", path).Msg("failed to open metrics file")
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		l.Error().Err(err).Str("file", path).Msg("failed to write metrics file")
		return
	}
	w.Flush()
}
