// Package relay shares one upstream market adapter between processes over a
// unix socket. Requests and pushes are length prefixed JSON frames.
package relay

import (
	"rookie/internal/model"
)

const (
	RequestSubscribe         = "subscribe"
	RequestUnsubscribe       = "unsubscribe"
	RequestQuerySymbolDetail = "query_symbol_detail"

	FrameResponse = "response"
	FrameTick     = "tick"
	FrameBar      = "bar"
)

// Request is sent by a client. An unsubscribe with no symbols releases every
// symbol of the client.
type Request struct {
	ID      uint64         `json:"id"`
	Type    string         `json:"type"`
	Symbols []model.Symbol `json:"symbols,omitempty"`
}

// Frame is sent by the server, either as the response to a request or as a
// market data push.
type Frame struct {
	Type    string              `json:"type"`
	ID      uint64              `json:"id,omitempty"`
	OK      bool                `json:"ok,omitempty"`
	Error   string              `json:"error,omitempty"`
	Details model.SymbolDetails `json:"details,omitempty"`
	Tick    *model.TickData     `json:"tick,omitempty"`
	Bar     *model.BarData      `json:"bar,omitempty"`
}

func reply(id uint64, err error) Frame {
	if err != nil {
		return Frame{Type: FrameResponse, ID: id, Error: err.Error()}
	}
	return Frame{Type: FrameResponse, ID: id, OK: true}
}
