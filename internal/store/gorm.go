package store

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"rookie/pkg/conn"
)

// GormSink inserts rows through gorm. Tables are auto-migrated on open.
type GormSink struct {
	client *conn.Client
	db     *gorm.DB
}

func NewGorm(ctx context.Context, opt conn.Option) (*GormSink, error) {
	client, err := conn.New(ctx, opt)
	if err != nil {
		return nil, err
	}

	sink, err := NewGormWithDB(client.DB())
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	sink.client = client
	return sink, nil
}

// NewGormWithDB uses an already opened handle. Close leaves the handle open.
func NewGormWithDB(db *gorm.DB) (*GormSink, error) {
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, errors.Wrap(err, "auto migrate journal tables")
	}
	return &GormSink{db: db}, nil
}

func (s *GormSink) create(table string, row any) {
	if err := s.db.Create(row).Error; err != nil {
		logs.Errorf("insert into %s, err: %+v", table, err)
	}
}

func (s *GormSink) WriteLog(row LogRow)             { s.create(TableLogs, &row) }
func (s *GormSink) WriteOrder(row OrderRow)         { s.create(TableOrders, &row) }
func (s *GormSink) WriteTrade(row TradeRow)         { s.create(TableTrades, &row) }
func (s *GormSink) WritePosition(row PositionRow)   { s.create(TablePositions, &row) }
func (s *GormSink) WriteRiskIndicators(row RiskRow) { s.create(TableRiskIndicators, &row) }

func (s *GormSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
