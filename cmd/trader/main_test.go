package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rookie/internal/ops"
)

const simConfig = `
account: paper
market_adapter:
  adapter_name: sim
trade_adapter:
  adapter_name: sim
risk:
  daily_order_num: 10
  daily_cancel_num: 10
  daily_repeat_order_num: 10
engine:
  query_interval_ms: -1
sim:
  trading_day: 20240102
  balance: 100000
  symbols:
    - symbol: {symbol: rb2410, trade_symbol: rb2410, exchange: SHFE, product_class: FUTURE}
      product_class: FUTURE
      price_tick: 1
      max_buy_volume: 10
      max_sell_volume: 10
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(simConfig), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "-f", path))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCheck(t *testing.T) {
	out := execute(t, "check")
	require.Contains(t, out, "account:  paper")
	require.Contains(t, out, "market:   sim")
}

func TestDetail(t *testing.T) {
	out := execute(t, "detail")
	require.Contains(t, out, `"trading_day":20240102`)
	require.Contains(t, out, `"rb2410"`)
}

func TestInsertAlgosRejectsUnknownAlgo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algo.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"algo_name": "vwap"}]`), 0o600))

	loaded := mustLoad(t)
	rt, err := newRuntime(loaded)
	require.NoError(t, err)
	defer rt.close()
	e, err := rt.newEngine(t.Context())
	require.NoError(t, err)
	defer e.Close(t.Context())

	require.Error(t, insertAlgos(e, path))
}

func mustLoad(t *testing.T) ops.Loaded {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(simConfig), 0o600))
	loaded, err := ops.Load(path)
	require.NoError(t, err)
	return loaded
}
