// Package report renders ranked channels for people: a csv export and a console table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tgscout/internal/channel"
)

const DefaultCSVPath = "tgstat_links.csv"

// utf-8 byte order mark, spreadsheet software needs it to detect the encoding
const bom = "\ufeff"

var csvHeader = []string{"url", "text", "members", "description", "category", "quality_score", "analysis"}

// WriteCSV writes one row per channel, in the order given.
func WriteCSV(w io.Writer, scored []channel.Scored) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	out := csv.NewWriter(w)
	if err := out.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range scored {
		err := out.Write([]string{
			s.URL,
			s.Text,
			s.Members.String(),
			s.Description,
			s.Category,
			strconv.Itoa(s.Score),
			strings.Join(s.Rationale, "; "),
		})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteCSVFile creates (or truncates) the file at path and writes the channels to it.
func WriteCSVFile(path string, scored []channel.Scored) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	err = WriteCSV(f, scored)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return nil
}
