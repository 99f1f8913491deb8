package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/quantfold/orderflow-core/src/models"
)

// CsvPriceBarDTO mirrors the exported bar format used for replay runs.
type CsvPriceBarDTO struct {
	Symbol    string  `csv:"symbol"`
	Timestamp string  `csv:"timestamp"`
	Open      string  `csv:"open"`
	High      string  `csv:"high"`
	Low       string  `csv:"low"`
	Close     string  `csv:"close"`
	Volume    float64 `csv:"volume"`
}

func (dto CsvPriceBarDTO) ToModel() (*models.PriceBar, error) {
	timestamp, err := time.Parse(time.RFC3339, dto.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("CsvPriceBarDTO.ToModel: failed to parse timestamp %q: %w", dto.Timestamp, err)
	}

	open, err := decimal.NewFromString(dto.Open)
	if err != nil {
		return nil, fmt.Errorf("CsvPriceBarDTO.ToModel: failed to parse open %q: %w", dto.Open, err)
	}

	high, err := decimal.NewFromString(dto.High)
	if err != nil {
		return nil, fmt.Errorf("CsvPriceBarDTO.ToModel: failed to parse high %q: %w", dto.High, err)
	}

	low, err := decimal.NewFromString(dto.Low)
	if err != nil {
		return nil, fmt.Errorf("CsvPriceBarDTO.ToModel: failed to parse low %q: %w", dto.Low, err)
	}

	close_, err := decimal.NewFromString(dto.Close)
	if err != nil {
		return nil, fmt.Errorf("CsvPriceBarDTO.ToModel: failed to parse close %q: %w", dto.Close, err)
	}

	return models.NewPriceBar(dto.Symbol, timestamp, open, high, low, close_, decimal.NewFromFloat(dto.Volume))
}

// ImportPriceBars loads a replay CSV, validating every bar on the way in.
func ImportPriceBars(path string) ([]models.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ImportPriceBars: failed to open %s: %w", path, err)
	}
	defer f.Close()

	var dtos []CsvPriceBarDTO
	if err := gocsv.UnmarshalFile(f, &dtos); err != nil {
		return nil, fmt.Errorf("ImportPriceBars: failed to unmarshal %s: %w", path, err)
	}

	bars := make([]models.PriceBar, 0, len(dtos))
	for i, dto := range dtos {
		bar, err := dto.ToModel()
		if err != nil {
			return nil, fmt.Errorf("ImportPriceBars: row %d: %w", i+1, err)
		}

		bars = append(bars, *bar)
	}

	return bars, nil
}
