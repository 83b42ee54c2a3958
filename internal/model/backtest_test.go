package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.2351))
	assert.Equal(t, -1.23, Round2(-1.234))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 100.0, Round2(99.999))
}

func TestBacktestResultMarshalRoundsEverything(t *testing.T) {
	entry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result := BacktestResult{
		StrategyID:         "ma_cross",
		Symbol:             "EURUSD",
		Timeframe:          TimeframeH1,
		WinRate:            66.66666,
		InitialBalance:     10000,
		FinalBalance:       10123.45678,
		TotalReturn:        123.45678,
		TotalReturnPercent: 1.2345678,
		SharpeRatio:        0.987654,
		EquityCurve: []EquityPoint{
			{Time: entry, Value: 10000.004},
			{Time: entry.Add(time.Hour), Value: 10123.456},
		},
		Trades: []Trade{{
			ID:            "bt-EURUSD-3",
			ProfitLoss:    123.45678,
			ReturnPercent: 61.72839,
			EntryPrice:    1.08643,
			ExitPrice:     1.15151,
			Quantity:      1857.1428,
		}},
		OpenPosition: &Position{
			ID:            "bt-EURUSD-9",
			EntryPrice:    1.10109,
			CurrentPrice:  1.10999,
			Quantity:      100.333,
			UnrealizedPnL: 0.893,
		},
	}

	doc, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &decoded))

	assert.Equal(t, 66.67, decoded["win_rate"])
	assert.Equal(t, 10123.46, decoded["final_balance"])
	assert.Equal(t, 123.46, decoded["total_return"])
	assert.Equal(t, 1.23, decoded["total_return_percent"])
	assert.Equal(t, 0.99, decoded["sharpe_ratio"])

	curve := decoded["equity_curve"].([]interface{})
	assert.Equal(t, 10000.0, curve[0].(map[string]interface{})["value"])
	assert.Equal(t, 10123.46, curve[1].(map[string]interface{})["value"])

	trade := decoded["trades"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, 123.46, trade["pnl"])
	assert.Equal(t, 61.73, trade["return_percent"])
	assert.Equal(t, 1.09, trade["entry_price"])
	assert.Equal(t, 1857.14, trade["quantity"])

	open := decoded["open_position"].(map[string]interface{})
	assert.Equal(t, 1.1, open["entry_price"])
	assert.Equal(t, 1.11, open["current_price"])
	assert.Equal(t, 0.89, open["unrealized_pnl"])

	// Marshalling never mutates the result itself.
	assert.Equal(t, 10123.45678, result.FinalBalance)
	assert.Equal(t, 1.08643, result.Trades[0].EntryPrice)
	assert.Equal(t, 1.10109, result.OpenPosition.EntryPrice)
}

func TestBacktestResultMarshalOmitsNilOpenPosition(t *testing.T) {
	doc, err := json.Marshal(BacktestResult{Symbol: "EURUSD", Timeframe: TimeframeH1})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &decoded))
	assert.NotContains(t, decoded, "open_position")
}

func TestParseTimeframe(t *testing.T) {
	for _, valid := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"} {
		tf, err := ParseTimeframe(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, valid, string(tf))
		assert.Greater(t, tf.Duration(), time.Duration(0))
	}

	for _, invalid := range []string{"", "7m", "2h", "1w", "H1"} {
		_, err := ParseTimeframe(invalid)
		require.Error(t, err, invalid)

		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	}
}
