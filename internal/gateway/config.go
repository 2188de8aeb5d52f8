package gateway

import (
	"slices"
	"time"

	"rookie/internal/model"
	"rookie/internal/model/enum"
)

// Front is one venue endpoint.
type Front struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Config selects and parameterizes an adapter.
type Config struct {
	AdapterName    string              `json:"adapter_name" yaml:"adapter_name"`
	ProductClasses []enum.ProductClass `json:"product_class" yaml:"product_class"`
	Exchanges      []enum.Exchange     `json:"exchange" yaml:"exchange"`
	SockType       string              `json:"sock_type" yaml:"sock_type"`
	Fronts         []Front             `json:"fronts" yaml:"fronts"`
	SocketPath     string              `json:"socket_path" yaml:"socket_path"`
	BrokerID       string              `json:"broker_id" yaml:"broker_id"`
	UserID         string              `json:"user_id" yaml:"user_id"`
	Password       string              `json:"password" yaml:"password"`
	AppID          string              `json:"app_id" yaml:"app_id"`
	AuthCode       string              `json:"auth_code" yaml:"auth_code"`
	TimeoutSecs    int                 `json:"timeout_secs" yaml:"timeout_secs"`
}

// Timeout is the bound of every blocking call of the adapter.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Accepts reports whether the symbol belongs to the configured exchanges and
// product classes. Empty lists accept everything.
func (c Config) Accepts(s model.Symbol) bool {
	if len(c.Exchanges) != 0 && !slices.Contains(c.Exchanges, s.Exchange) {
		return false
	}
	if len(c.ProductClasses) != 0 && !slices.Contains(c.ProductClasses, s.ProductClass) {
		return false
	}
	return true
}

// Filter drops the details rejected by Accepts.
func (c Config) Filter(details model.SymbolDetails) model.SymbolDetails {
	out := make(model.SymbolDetails, len(details))
	for key, d := range details {
		if d == nil || !c.Accepts(d.Symbol) {
			continue
		}
		out[key] = d
	}
	return out
}
