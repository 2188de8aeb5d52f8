package conn

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/yanun0323/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rookie/pkg/exception"
)

const (
	defaultHost    = "localhost"
	defaultPort    = 5432
	defaultSSLMode = "disable"
	pingTimeout    = 5 * time.Second
)

// Option is the postgres section of a config file. ConnString, when set,
// is used as is and every other address field is ignored.
type Option struct {
	Host         string            `json:"host" yaml:"host"`
	Port         int               `json:"port" yaml:"port"`
	User         string            `json:"user" yaml:"user"`
	Password     string            `json:"password" yaml:"password"`
	Database     string            `json:"database" yaml:"database"`
	SSLMode      string            `json:"sslmode" yaml:"sslmode"`
	Params       map[string]string `json:"params" yaml:"params"`
	ConnString   string            `json:"conn_string" yaml:"conn_string"`
	MaxOpenConns int               `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int               `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxLifeSecs  int               `json:"conn_max_lifetime_secs" yaml:"conn_max_lifetime_secs"`

	// Gorm replaces the silent default config.
	Gorm *gorm.Config `json:"-" yaml:"-"`
}

// Client owns one postgres pool.
type Client struct {
	db *gorm.DB
}

// New opens the pool and pings the server once before returning.
func New(ctx context.Context, opt Option) (*Client, error) {
	dsn, err := opt.DSN()
	if err != nil {
		return nil, err
	}

	cfg := opt.Gorm
	if cfg == nil {
		cfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	opt.tune(pool.SetMaxOpenConns, pool.SetMaxIdleConns, pool.SetConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, errors.Wrap(err, "ping postgres").With("host", opt.Host)
	}
	return &Client{db: db}, nil
}

func (opt Option) tune(maxOpen, maxIdle func(int), lifetime func(time.Duration)) {
	if opt.MaxOpenConns > 0 {
		maxOpen(opt.MaxOpenConns)
	}
	if opt.MaxIdleConns > 0 {
		maxIdle(opt.MaxIdleConns)
	}
	if opt.MaxLifeSecs > 0 {
		lifetime(time.Duration(opt.MaxLifeSecs) * time.Second)
	}
}

func (c *Client) DB() *gorm.DB {
	if c == nil {
		return nil
	}
	return c.db
}

func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	pool, err := c.db.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// DSN renders the option as a postgres URL. Empty fields take the local
// defaults and sslmode is always present.
func (opt Option) DSN() (string, error) {
	if opt.ConnString != "" {
		return opt.ConnString, nil
	}
	if opt.Port < 0 || opt.Port > 65535 {
		return "", errors.Wrapf(exception.ErrInvalidConfig, "postgres port %d", opt.Port)
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", or(opt.Host, defaultHost), or(opt.Port, defaultPort)),
	}
	switch {
	case opt.User != "" && opt.Password != "":
		u.User = url.UserPassword(opt.User, opt.Password)
	case opt.User != "":
		u.User = url.User(opt.User)
	}
	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	q := make(url.Values, len(opt.Params)+1)
	for k, v := range opt.Params {
		if k != "" {
			q.Set(k, v)
		}
	}
	q.Set("sslmode", or(opt.SSLMode, defaultSSLMode))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}
