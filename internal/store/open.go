package store

import (
	"context"
	"strings"
	"time"

	"github.com/yanun0323/errors"

	"rookie/pkg/conn"
	"rookie/pkg/exception"
)

const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and parameterizes the journal backend. The postgres fields
// sit next to driver in the same section.
type Config struct {
	Driver        string `json:"driver" yaml:"driver"`
	Path          string `json:"path" yaml:"path"`
	AsyncCapacity int    `json:"async_capacity" yaml:"async_capacity"`

	conn.Option `yaml:",inline"`
}

func (c Config) driver() string {
	d := strings.ToLower(strings.TrimSpace(c.Driver))
	if d == "" {
		return DriverNone
	}
	return d
}

// Validate reports an unknown driver or a missing sqlite path.
func (c Config) Validate() error {
	switch c.driver() {
	case DriverNone, DriverPostgres:
		return nil
	case DriverSQLite:
		if c.Path == "" {
			return errors.Wrap(exception.ErrInvalidConfig, "sqlite driver requires path")
		}
		return nil
	default:
		return errors.Wrapf(exception.ErrStoreUnknownDriver, "driver %q", c.Driver)
	}
}

// Open builds the configured backend wrapped in an Async writer.
// The none driver returns Nop.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		backend Sink
		err     error
	)
	switch cfg.driver() {
	case DriverNone:
		return Nop{}, nil
	case DriverSQLite:
		backend, err = NewSQLite(cfg.Path)
	case DriverPostgres:
		opt := cfg.Option
		if opt.MaxLifeSecs == 0 {
			opt.MaxLifeSecs = int(time.Hour / time.Second)
		}
		backend, err = NewGorm(ctx, opt)
	}
	if err != nil {
		return nil, err
	}

	return NewAsync(backend, cfg.AsyncCapacity), nil
}
