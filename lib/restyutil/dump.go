// Package restyutil writes every request a resty client makes, and the response it got,
// to an output for later inspection.
package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// Dump registers a hook that formats every completed exchange and writes it to output with a
// sequential id. Failed requests have no response and are not written.
func Dump(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(fmt.Sprintf("%04d.txt", id), formatHttpMessage(res))
		return nil
	})
}

// DirOutput writes each exchange to its own file under a directory.
type DirOutput struct {
	directory string
}

// NewDirOutput creates dir if it does not exist yet. Existing files are overwritten as ids
// repeat between runs.
func NewDirOutput(dir string) (DirOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return DirOutput{}, err
	}
	return DirOutput{directory: dir}, nil
}

func (o DirOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "id", id, "err", err)
	}
}

// MemoryOutput keeps everything written to it, keyed by id.
type MemoryOutput map[string]string

func (o MemoryOutput) Write(id string, contents string) {
	o[id] = contents
}

func formatStatus(res *resty.Response) string {
	return strconv.Itoa(res.StatusCode())
}
