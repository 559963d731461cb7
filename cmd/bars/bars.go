package bars

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/repository"
)

// Bars pulls daily OHLCV history from the bridge and stores it for the
// signal and liquidity paths.
type Bars struct {
	Log *logrus.Entry
	DB  *gorm.DB
}

type barPayload struct {
	Datetime time.Time `json:"datetime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
}

func (b *Bars) Start() error {
	config := GetConfig()
	ctx := context.Background()

	client := resty.New().SetTimeout(30 * time.Second)
	barRep := repository.NewBarRepository().WithDB(b.DB)

	for _, symbol := range config.Symbols {
		rows, err := b.fetch(ctx, client, config, symbol)
		if err != nil {
			b.Log.WithError(err).WithField("symbol", symbol).Error("Failed to fetch bars")
			return err
		}

		if err := barRep.InsertBars(ctx, rows); err != nil {
			b.Log.WithError(err).WithField("symbol", symbol).Error("Failed to store bars")
			return err
		}

		b.Log.WithFields(map[string]interface{}{
			"symbol": symbol,
			"rows":   len(rows),
		}).Info("Bars imported")
	}

	return nil
}

func (b *Bars) fetch(ctx context.Context, client *resty.Client, config Config, symbol string) ([]model.EquityBar, error) {
	var payload []barPayload
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"days":   strconv.Itoa(config.FetchDays),
		}).
		SetResult(&payload).
		Get(config.SourceURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("bars source returned status %d for %s", resp.StatusCode(), symbol)
	}

	rows := make([]model.EquityBar, 0, len(payload))
	for _, bar := range payload {
		rows = append(rows, model.EquityBar{
			Symbol:   symbol,
			Datetime: bar.Datetime,
			Open:     decimal.NewFromFloat(bar.Open),
			High:     decimal.NewFromFloat(bar.High),
			Low:      decimal.NewFromFloat(bar.Low),
			Close:    decimal.NewFromFloat(bar.Close),
			Volume:   decimal.NewFromInt(bar.Volume),
		})
	}
	return rows, nil
}
