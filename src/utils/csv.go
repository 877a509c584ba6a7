package utils

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-risk/src/eventmodels"
)

// SnapshotRowDTO is the CSV wire row for one quote. All rows in a file share
// the snapshot timestamp.
type SnapshotRowDTO struct {
	Timestamp    string  `csv:"timestamp"`
	Symbol       string  `csv:"symbol"`
	Underlying   string  `csv:"underlying"`
	Type         string  `csv:"type"`
	Strike       float64 `csv:"strike"`
	TimeToExpiry float64 `csv:"time_to_expiry"`
	FuturePrice  float64 `csv:"future_price"`
	MarketPrice  float64 `csv:"market_price"`
}

func (dto SnapshotRowDTO) ToQuote() eventmodels.OptionQuote {
	return eventmodels.OptionQuote{
		Symbol:       dto.Symbol,
		Underlying:   eventmodels.InstrumentID(dto.Underlying),
		Type:         eventmodels.OptionType(dto.Type),
		Strike:       dto.Strike,
		TimeToExpiry: dto.TimeToExpiry,
		FuturePrice:  dto.FuturePrice,
		MarketPrice:  dto.MarketPrice,
	}
}

// ImportMarketSnapshot reads one snapshot CSV. The snapshot timestamp is
// taken from the first row; rows with a different timestamp are rejected so
// two snapshot files cannot be concatenated by accident.
func ImportMarketSnapshot(fname string) (eventmodels.MarketSnapshot, error) {
	f, err := os.Open(fname)
	if err != nil {
		return eventmodels.MarketSnapshot{}, fmt.Errorf("utils.ImportMarketSnapshot: open %s: %w", fname, err)
	}

	defer f.Close()

	var rows []*SnapshotRowDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return eventmodels.MarketSnapshot{}, fmt.Errorf("utils.ImportMarketSnapshot: unmarshal %s: %w", fname, err)
	}

	if len(rows) == 0 {
		return eventmodels.MarketSnapshot{}, fmt.Errorf("utils.ImportMarketSnapshot: %s has no rows", fname)
	}

	timestamp, err := time.Parse(time.RFC3339, rows[0].Timestamp)
	if err != nil {
		return eventmodels.MarketSnapshot{}, fmt.Errorf("utils.ImportMarketSnapshot: parse timestamp %s: %w", rows[0].Timestamp, err)
	}

	snapshot := eventmodels.MarketSnapshot{Timestamp: timestamp}
	for i, row := range rows {
		if row.Timestamp != rows[0].Timestamp {
			return eventmodels.MarketSnapshot{}, fmt.Errorf("utils.ImportMarketSnapshot: row %d timestamp %s does not match snapshot %s", i, row.Timestamp, rows[0].Timestamp)
		}

		snapshot.Rows = append(snapshot.Rows, row.ToQuote())
	}

	log.Debugf("utils.ImportMarketSnapshot: %s: %d rows at %s", fname, len(snapshot.Rows), timestamp)

	return snapshot, nil
}

// PnLRowDTO is the CSV export row for one attributed strike.
type PnLRowDTO struct {
	Symbol            string  `csv:"symbol"`
	Strike            float64 `csv:"strike"`
	ActualPnL         float64 `csv:"actual_pnl"`
	DeltaTerm         float64 `csv:"delta_term"`
	ThetaTerm         float64 `csv:"theta_term"`
	VegaTerm          float64 `csv:"vega_term"`
	GammaTerm         float64 `csv:"gamma_term"`
	SpeedTerm         float64 `csv:"speed_term"`
	VolgaTerm         float64 `csv:"volga_term"`
	VannaTerm         float64 `csv:"vanna_term"`
	VetaTerm          float64 `csv:"veta_term"`
	CharmTerm         float64 `csv:"charm_term"`
	BaseExplained     float64 `csv:"base_explained"`
	ExtendedExplained float64 `csv:"extended_explained"`
	BaseErrorPct      float64 `csv:"base_error_pct"`
	ExtendedErrorPct  float64 `csv:"extended_error_pct"`
}

// ExportPnLDecompositions writes the attribution rows to outDir/fname.
func ExportPnLDecompositions(rows []eventmodels.PnLDecomposition, outDir string, fname string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("utils.ExportPnLDecompositions: mkdir %s: %w", outDir, err)
	}

	dtos := make([]*PnLRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, &PnLRowDTO{
			Symbol:            row.Symbol,
			Strike:            row.Strike,
			ActualPnL:         row.ActualPnL,
			DeltaTerm:         row.DeltaTerm,
			ThetaTerm:         row.ThetaTerm,
			VegaTerm:          row.VegaTerm,
			GammaTerm:         row.GammaTerm,
			SpeedTerm:         row.SpeedTerm,
			VolgaTerm:         row.VolgaTerm,
			VannaTerm:         row.VannaTerm,
			VetaTerm:          row.VetaTerm,
			CharmTerm:         row.CharmTerm,
			BaseExplained:     row.BaseExplained,
			ExtendedExplained: row.ExtendedExplained,
			BaseErrorPct:      row.BaseErrorPct,
			ExtendedErrorPct:  row.ExtendedErrorPct,
		})
	}

	outPath := path.Join(outDir, fname)
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("utils.ExportPnLDecompositions: create %s: %w", outPath, err)
	}

	defer f.Close()

	if err := gocsv.MarshalFile(&dtos, f); err != nil {
		return "", fmt.Errorf("utils.ExportPnLDecompositions: marshal %s: %w", outPath, err)
	}

	log.Infof("utils.ExportPnLDecompositions: wrote %d rows to %s", len(dtos), outPath)

	return outPath, nil
}
