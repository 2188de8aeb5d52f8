package ops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"

	"rookie/internal/engine"
	"rookie/internal/gateway"
	"rookie/internal/gateway/sim"
	"rookie/internal/risk"
	"rookie/internal/schedule"
	"rookie/internal/store"
	"rookie/pkg/exception"
)

// FileConfig mirrors the config file layout.
type FileConfig struct {
	Account  string          `json:"account" yaml:"account"`
	Log      LogConfig       `json:"log" yaml:"log"`
	Market   gateway.Config  `json:"market_adapter" yaml:"market_adapter"`
	Trade    gateway.Config  `json:"trade_adapter" yaml:"trade_adapter"`
	Risk     risk.Thresholds `json:"risk" yaml:"risk"`
	DB       store.Config    `json:"db" yaml:"db"`
	Engine   engine.Config   `json:"engine" yaml:"engine"`
	Schedule schedule.Config `json:"schedule" yaml:"schedule"`
	Relay    RelayConfig     `json:"relay" yaml:"relay"`
	Sim      SimConfig       `json:"sim" yaml:"sim"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// RelayConfig is the server side of the market data relay.
type RelayConfig struct {
	SocketPath string         `json:"socket_path" yaml:"socket_path"`
	Upstream   gateway.Config `json:"upstream" yaml:"upstream"`
}

// SimConfig seeds the in-process venue used by the sim adapters.
type SimConfig struct {
	sim.VenueConfig `yaml:",inline"`
	WalkMillis int   `json:"walk_interval_ms" yaml:"walk_interval_ms"`
	Seed       int64 `json:"seed" yaml:"seed"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Account  string
	LogLevel store.Level
	Market   gateway.Config
	Trade    gateway.Config
	Risk     risk.Thresholds
	DB       store.Config
	Engine   engine.Config
	Schedule schedule.Config
	Relay    RelayConfig
	Sim      SimConfig
}

// UsesSim reports whether any adapter is served by the in-process venue.
func (l Loaded) UsesSim() bool {
	return l.Market.AdapterName == sim.Name ||
		l.Trade.AdapterName == sim.Name ||
		l.Relay.Upstream.AdapterName == sim.Name
}

// Load reads a JSON or YAML config file, chosen by extension. A .env file
// next to it is loaded first and ${VAR} references in credentials are
// expanded from the environment.
func Load(path string) (Loaded, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return Loaded{}, err
	}

	cfg, err := Decode(path)
	if err != nil {
		return Loaded{}, err
	}
	expandCredentials(&cfg)

	level, err := store.ParseLevel(cfg.Log.Level)
	if err != nil {
		return Loaded{}, err
	}
	if err := validate(cfg); err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Account:  cfg.Account,
		LogLevel: level,
		Market:   cfg.Market,
		Trade:    cfg.Trade,
		Risk:     cfg.Risk,
		DB:       cfg.DB,
		Engine:   cfg.Engine,
		Schedule: cfg.Schedule,
		Relay:    cfg.Relay,
		Sim:      cfg.Sim,
	}, nil
}

// Decode parses the file without validating it.
func Decode(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, errors.Wrapf(err, "read config %s", path)
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = sonic.Unmarshal(data, &cfg)
	default:
		return FileConfig{}, errors.Wrapf(exception.ErrInvalidConfig, "config extension of %s", path)
	}
	if err != nil {
		return FileConfig{}, errors.Wrapf(exception.ErrInvalidConfig, "parse config %s, err: %+v", path, err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(exception.ErrInvalidConfig, "load %s, err: %+v", path, err)
	}
	return nil
}

func expandCredentials(cfg *FileConfig) {
	for _, g := range []*gateway.Config{&cfg.Market, &cfg.Trade, &cfg.Relay.Upstream} {
		g.BrokerID = os.ExpandEnv(g.BrokerID)
		g.UserID = os.ExpandEnv(g.UserID)
		g.Password = os.ExpandEnv(g.Password)
		g.AppID = os.ExpandEnv(g.AppID)
		g.AuthCode = os.ExpandEnv(g.AuthCode)
	}
	cfg.DB.User = os.ExpandEnv(cfg.DB.User)
	cfg.DB.Password = os.ExpandEnv(cfg.DB.Password)
}

func validate(cfg FileConfig) error {
	if cfg.Account == "" {
		return errors.Wrap(exception.ErrInvalidConfig, "account is empty")
	}
	if cfg.Market.AdapterName == "" || cfg.Trade.AdapterName == "" {
		return errors.Wrap(exception.ErrInvalidConfig, "adapter_name is empty")
	}
	if cfg.Risk.DailyOrderNum <= 0 || cfg.Risk.DailyCancelNum <= 0 || cfg.Risk.DailyRepeatOrderNum <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "risk thresholds must be positive, got %+v", cfg.Risk)
	}
	if cfg.Engine.EventQueueCapacity < 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "event_queue_capacity %d", cfg.Engine.EventQueueCapacity)
	}
	if err := cfg.DB.Validate(); err != nil {
		return err
	}
	if _, err := schedule.New(cfg.Schedule); err != nil {
		return err
	}
	return nil
}
