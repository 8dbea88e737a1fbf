package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/invpend/internal/sim"
)

var csvHeader = []string{"step", "time", "theta", "omega", "tau", "setpoint", "enabled"}

// WriteCSV writes one row per sample, initial state included.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for _, s := range result.Samples {
		row[0] = strconv.Itoa(s.Step)
		row[1] = formatFloat(s.Time)
		row[2] = formatFloat(s.Theta)
		row[3] = formatFloat(s.Omega)
		row[4] = formatFloat(s.Tau)
		row[5] = formatFloat(s.Setpoint)
		row[6] = strconv.FormatBool(s.Enabled)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
