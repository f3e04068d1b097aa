package sample

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

const csvTimeLayout = "2006-01-02T15:04:05.000Z"

// WriteCSV emits the samples as CSV with a timestamp,value header and
// ISO-8601 timestamps.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "value"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			time.UnixMilli(s.T).UTC().Format(csvTimeLayout),
			strconv.FormatFloat(s.V, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
