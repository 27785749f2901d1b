package render

import (
	"encoding/csv"
	"io"

	"github.com/intelligenceonchain/tornadoview/internal/report"
)

// CSV writes the report as RFC 4180 CSV: a header row describing the dynamic
// pool columns, then one row per recipient in report order. Fields are quoted
// by the csv writer as needed, so addresses and amounts round-trip without
// schema ambiguity. Missing dates are empty fields.
func CSV(w io.Writer, rep report.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns(rep.Pools)); err != nil {
		return err
	}

	for _, summary := range rep.Summaries {
		if err := cw.Write(row(summary, rep.Pools, "")); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
