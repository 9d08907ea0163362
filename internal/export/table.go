package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/rfm-cli/internal/model"
)

// WriteTableCSV writes the full scored customer table, one row per customer,
// with a header taken from the csv struct tags of model.CustomerRFM.
// Monetary values are written with two decimals.
func WriteTableCSV(path string, rows []model.CustomerRFM) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create table csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.Register(func(f float64) ([]byte, error) {
		return strconv.AppendFloat(nil, f, 'f', 2, 64), nil
	})
	if len(rows) == 0 {
		if err := enc.EncodeHeader(model.CustomerRFM{}); err != nil {
			return eris.Wrap(err, "export: encode table header")
		}
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrapf(err, "export: encode customer %s", r.CustomerID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush table csv")
	}
	return eris.Wrap(f.Close(), "export: close table csv")
}
