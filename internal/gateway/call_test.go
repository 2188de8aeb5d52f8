package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/pkg/exception"
)

func TestCallResolveFromCallbackGoroutine(t *testing.T) {
	call := NewCall[uint32](nil)
	require.NoError(t, call.Begin())
	require.ErrorIs(t, call.Begin(), exception.ErrRPCBusy)

	go func() {
		time.Sleep(5 * time.Millisecond)
		call.Resolve(20250102)
	}()

	day, err := call.Wait(t.Context(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(20250102), day)
	assert.False(t, call.Pending())
}

func TestCallAppendCompletesOnLastPage(t *testing.T) {
	call := NewCall(MergeSlice[[]model.OrderData])
	require.NoError(t, call.Begin())

	go func() {
		call.Append([]model.OrderData{{OrderRef: 0}, {OrderRef: 1}}, false)
		call.Append([]model.OrderData{{OrderRef: 2}}, true)
	}()

	orders, err := call.Wait(t.Context(), time.Second)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, model.OrderRef(2), orders[2].OrderRef)
}

func TestCallAppendMergesMaps(t *testing.T) {
	call := NewCall(MergeMap[model.SymbolDetails])
	require.NoError(t, call.Begin())
	call.Append(model.SymbolDetails{"a": {}}, false)
	call.Append(model.SymbolDetails{"b": {}}, true)

	details, err := call.Wait(t.Context(), time.Second)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

func TestCallFail(t *testing.T) {
	call := NewCall[struct{}](nil)
	require.NoError(t, call.Begin())
	boom := errors.New("vendor says no")
	call.Fail(boom)

	_, err := call.Wait(t.Context(), time.Second)
	require.ErrorIs(t, err, boom)

	require.NoError(t, call.Begin())
	call.Fail(nil)
	_, err = call.Wait(t.Context(), time.Second)
	require.ErrorIs(t, err, exception.ErrRPCFailed)
}

func TestCallTimeoutDropsLateAnswer(t *testing.T) {
	call := NewCall[uint32](nil)
	require.NoError(t, call.Begin())

	start := time.Now()
	_, err := call.Wait(t.Context(), 20*time.Millisecond)
	require.ErrorIs(t, err, exception.ErrRPCTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	call.Resolve(1)
	assert.False(t, call.Pending())

	require.NoError(t, call.Begin())
	call.Resolve(2)
	v, err := call.Wait(t.Context(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v)
}

func TestCallContextCanceled(t *testing.T) {
	call := NewCall[uint32](nil)
	require.NoError(t, call.Begin())

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := call.Wait(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfigAccepts(t *testing.T) {
	cfg := Config{
		Exchanges:      []enum.Exchange{enum.ExchangeSHFE},
		ProductClasses: []enum.ProductClass{enum.ProductClassFuture},
	}
	rb := model.NewSymbol("rb2501", enum.ExchangeSHFE, enum.ProductClassFuture)
	stock := model.NewSymbol("600000", enum.ExchangeSSE, enum.ProductClassStock)

	assert.True(t, cfg.Accepts(rb))
	assert.False(t, cfg.Accepts(stock))
	assert.True(t, Config{}.Accepts(stock))

	filtered := cfg.Filter(model.SymbolDetails{
		rb.Key():    {Symbol: rb},
		stock.Key(): {Symbol: stock},
	})
	assert.Len(t, filtered, 1)
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
	assert.Equal(t, 5*time.Second, Config{TimeoutSecs: 5}.Timeout())
}

func TestRegistryUnknownAdapter(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.NewMarket(Config{AdapterName: "ctp"}, nil)
	require.ErrorIs(t, err, exception.ErrGatewayNilPusher)

	_, err = reg.NewTrade(Config{AdapterName: "ctp"}, nopPusher{})
	require.ErrorIs(t, err, exception.ErrGatewayUnknown)
}

type nopPusher struct{}

func (nopPusher) PushTick(model.TickData)         {}
func (nopPusher) PushBar(model.BarData)           {}
func (nopPusher) PushTrade(model.TradeData)       {}
func (nopPusher) PushCancel(model.CancelData)     {}
func (nopPusher) PushOrderError(model.OrderError) {}
func (nopPusher) PushMarketDisconnected()         {}
func (nopPusher) PushTradeDisconnected()          {}
