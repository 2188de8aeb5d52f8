package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/pkg/exception"
)

type blockingSink struct {
	Nop
	release chan struct{}
	rec     *Recorder
}

func (b *blockingSink) WriteLog(row LogRow) {
	<-b.release
	b.rec.WriteLog(row)
}

func TestAsyncDropsWhenFull(t *testing.T) {
	rec := NewRecorder()
	b := &blockingSink{release: make(chan struct{}), rec: rec}
	a := NewAsync(b, 2)

	for i := 0; i < 10; i++ {
		a.WriteLog(LogRow{EventType: "E"})
	}

	// the worker holds one row, the buffer holds two
	assert.Eventually(t, func() bool { return a.Dropped() >= 7 }, time.Second, time.Millisecond)

	close(b.release)
	require.NoError(t, a.Close())
	assert.Equal(t, uint64(10), uint64(len(rec.Logs()))+a.Dropped())
}

func TestAsyncCloseDrainsAndCloses(t *testing.T) {
	rec := NewRecorder()
	a := NewAsync(rec, 16)

	a.WriteOrder(OrderRow{OrderRef: 1})
	a.WriteTrade(TradeRow{TradeID: "T"})
	a.WritePosition(PositionRow{Symbol: "rb2410"})
	a.WriteRiskIndicators(RiskRow{DailyOrderNum: 3})

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.True(t, rec.Closed())
	assert.Len(t, rec.Orders(), 1)
	assert.Len(t, rec.Trades(), 1)
	assert.Len(t, rec.Positions(), 1)
	assert.Len(t, rec.RiskIndicators(), 1)

	a.WriteLog(LogRow{})
	assert.Equal(t, uint64(1), a.Dropped())
}

func TestJournalRows(t *testing.T) {
	rec := NewRecorder()
	j := NewJournal(rec, "acc")
	j.SetTradingDay(20240102)

	sym := model.NewSymbol("rb2410", enum.ExchangeSHFE, enum.ProductClassFuture)
	j.Log(LevelInfo, "START", "session %s", "up")
	j.LogOrder(LevelWarn, "ORDER_INSERT", sym, 7, "volume %d", 1)

	logs := rec.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "session up", logs[0].Logs)
	assert.Nil(t, logs[0].Symbol)
	assert.Equal(t, uint32(20240102), logs[0].TradingDay)

	require.NotNil(t, logs[1].Symbol)
	require.NotNil(t, logs[1].OrderRef)
	assert.Equal(t, "rb2410", *logs[1].Symbol)
	assert.Equal(t, "SHFE", *logs[1].Exchange)
	assert.Equal(t, uint32(7), *logs[1].OrderRef)
	assert.Equal(t, "WARN", logs[1].LogLevel)
	assert.Len(t, rec.LogsOf("ORDER_INSERT"), 1)

	order := model.OrderData{
		OrderRef: 7,
		OrderReq: model.OrderReq{Symbol: sym, LimitPrice: 3500, Volume: 1, Direction: enum.DirectionLong, Offset: enum.OffsetOpen},
	}
	j.Order(order)
	j.Trade(order, model.TradeData{OrderRef: 7, TradeID: "T1", TradePrice: 3500, TradeVolume: 1})

	orders := rec.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "LONG", orders[0].Direction)
	assert.Equal(t, "OPEN", orders[0].Offset)
	trades := rec.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, "T1", trades[0].TradeID)
	assert.Equal(t, "acc", trades[0].AccountName)
}

func TestJournalMinLevel(t *testing.T) {
	rec := NewRecorder()
	j := NewJournal(rec, "acc")
	level, err := ParseLevel(" warn ")
	require.NoError(t, err)
	j.SetMinLevel(level)

	j.Log(LevelDebug, "TICK", "dropped")
	j.Log(LevelInfo, "START", "dropped")
	j.Log(LevelError, "STOP", "kept")
	require.Len(t, rec.Logs(), 1)
	assert.Equal(t, "ERROR", rec.Logs()[0].LogLevel)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, level)
	_, err = ParseLevel("verbose")
	require.ErrorIs(t, err, exception.ErrInvalidConfig)
}

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)

	j := NewJournal(s, "acc")
	j.SetTradingDay(20240102)
	sym := model.NewSymbol("rb2410", enum.ExchangeSHFE, enum.ProductClassFuture)
	j.LogSymbol(LevelInfo, "TICK", sym, "last %v", 3500.0)
	j.Order(model.OrderData{OrderRef: 0, OrderReq: model.OrderReq{Symbol: sym, Volume: 2, Direction: enum.DirectionShort, Offset: enum.OffsetClose}})
	j.Position(model.PositionData{Symbol: sym, Long: model.PositionInfo{Position: 3}})
	j.Risk(model.RiskIndicators{DailyOrderNum: 4, DailyCancelNum: 1})
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for table, want := range map[string]int{
		TableLogs:           1,
		TableOrders:         1,
		TableTrades:         0,
		TablePositions:      1,
		TableRiskIndicators: 1,
	} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Equal(t, want, n, table)
	}

	var offset string
	require.NoError(t, db.QueryRow(`SELECT "offset" FROM rookietrader_orders`).Scan(&offset))
	assert.Equal(t, "CLOSE", offset)

	var long uint32
	require.NoError(t, db.QueryRow(`SELECT long_position FROM rookietrader_positions`).Scan(&long))
	assert.Equal(t, uint32(3), long)
}

func TestOpen(t *testing.T) {
	s, err := Open(t.Context(), Config{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)

	_, err = Open(t.Context(), Config{Driver: "mongo"})
	require.ErrorIs(t, err, exception.ErrStoreUnknownDriver)

	_, err = Open(t.Context(), Config{Driver: "sqlite"})
	require.ErrorIs(t, err, exception.ErrInvalidConfig)

	s, err = Open(t.Context(), Config{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "j.db")})
	require.NoError(t, err)
	assert.IsType(t, &Async{}, s)
	s.WriteRiskIndicators(RiskRow{DailyOrderNum: 1})
	require.NoError(t, s.Close())
}
