// Package sim is an in-process venue. It matches limit orders against the
// last price and answers every adapter request from its own goroutine, the
// way a vendor SDK answers from its callback thread.
package sim

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mrand "math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/yanun0323/logs"

	"rookie/internal/model"
	"rookie/pkg/exception"
)

// Name is the adapter name the sim venue registers under.
const Name = "sim"

const (
	defaultPageSize = 50
	workCapacity    = 1024
)

// VenueConfig seeds the venue.
type VenueConfig struct {
	TradingDay uint32               `json:"trading_day" yaml:"trading_day"`
	Balance    float64              `json:"balance" yaml:"balance"`
	Symbols    []model.SymbolDetail `json:"symbols" yaml:"symbols"`
	Prices     map[string]float64   `json:"prices" yaml:"prices"`
	PageSize   int                  `json:"page_size" yaml:"page_size"`
}

type order struct {
	data  model.OrderData
	owner *TradeAdapter
}

// Venue holds the book of one account. Its state is only touched from the
// venue goroutine.
type Venue struct {
	cfg      VenueConfig
	details  model.SymbolDetails
	last     map[string]float64
	orders   []*order
	trades   [][]model.TradeData
	position model.Positions
	account  model.AccountData
	entropy  io.Reader
	now      func() time.Time

	mu      sync.Mutex
	markets []*MarketAdapter
	traders []*TradeAdapter

	offline atomic.Bool
	work    chan func()
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewVenue(cfg VenueConfig) *Venue {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	var seed int64
	_ = binary.Read(rand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	v := &Venue{
		cfg:      cfg,
		details:  make(model.SymbolDetails, len(cfg.Symbols)),
		last:     make(map[string]float64, len(cfg.Prices)),
		position: make(model.Positions),
		account:  model.AccountData{TradingDay: cfg.TradingDay, Balance: cfg.Balance, PreBalance: cfg.Balance, Available: cfg.Balance},
		entropy:  ulid.Monotonic(mrand.New(mrand.NewSource(seed)), 0),
		now:      time.Now,
		work:     make(chan func(), workCapacity),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for i := range cfg.Symbols {
		d := cfg.Symbols[i]
		v.details[d.Symbol.Key()] = &d
	}
	for key, price := range cfg.Prices {
		v.last[key] = price
	}

	go v.run()
	return v
}

func (v *Venue) run() {
	defer close(v.done)
	for {
		select {
		case fn := <-v.work:
			fn()
		case <-v.quit:
			return
		}
	}
}

// Close stops the venue goroutine. Pending requests time out.
func (v *Venue) Close() {
	v.once.Do(func() {
		close(v.quit)
	})
	<-v.done
}

func (v *Venue) submit(fn func()) error {
	select {
	case <-v.quit:
		return exception.ErrGatewayDisconnected
	default:
	}
	select {
	case v.work <- fn:
		return nil
	default:
		return exception.ErrRPCBusy
	}
}

// SetOnline controls whether logins succeed.
func (v *Venue) SetOnline(online bool) {
	v.offline.Store(!online)
}

// Disconnect drops every logged in adapter. Each one reports the loss once.
func (v *Venue) Disconnect() {
	v.mu.Lock()
	markets := append([]*MarketAdapter(nil), v.markets...)
	traders := append([]*TradeAdapter(nil), v.traders...)
	v.mu.Unlock()

	for _, m := range markets {
		m.drop()
	}
	for _, t := range traders {
		t.drop()
	}
}

// SetPrice moves the last price of a symbol, publishes a tick to subscribers
// and fills the resting orders the new price crosses.
func (v *Venue) SetPrice(symbol string, price float64) error {
	return v.submit(func() {
		detail, ok := v.details[symbol]
		if !ok {
			logs.Warnf("sim set price of unknown symbol %s", symbol)
			return
		}
		v.last[symbol] = price
		v.publish(v.tick(detail, price))
		v.sweep(symbol, price)
	})
}

func (v *Venue) tick(d *model.SymbolDetail, price float64) model.TickData {
	return model.TickData{
		Symbol:          d.Symbol,
		TradingDay:      v.cfg.TradingDay,
		UpdateTime:      v.now(),
		LastPrice:       price,
		UpperLimitPrice: d.UpperLimitPrice,
		LowerLimitPrice: d.LowerLimitPrice,
		Bids:            []model.Level{{Price: price - d.PriceTick, Volume: 1}},
		Asks:            []model.Level{{Price: price + d.PriceTick, Volume: 1}},
	}
}

func (v *Venue) publish(tick model.TickData) {
	v.mu.Lock()
	markets := append([]*MarketAdapter(nil), v.markets...)
	v.mu.Unlock()
	for _, m := range markets {
		m.deliver(tick)
	}
}

func (v *Venue) attachMarket(m *MarketAdapter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markets = append(v.markets, m)
}

func (v *Venue) attachTrade(t *TradeAdapter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.traders = append(v.traders, t)
}

func (v *Venue) nextTradeID() string {
	id, err := ulid.New(ulid.Timestamp(v.now()), v.entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}
