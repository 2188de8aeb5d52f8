package exception

import "errors"

// Gateway adapter errors
var (
	ErrRPCTimeout          = errors.New("gateway: rpc timeout")
	ErrRPCFailed           = errors.New("gateway: rpc failed")
	ErrRPCBusy             = errors.New("gateway: rpc already in flight")
	ErrGatewayDisconnected = errors.New("gateway: disconnected")
	ErrGatewayNotLoggedIn  = errors.New("gateway: not logged in")
	ErrGatewayUnknown      = errors.New("gateway: unknown adapter name")
	ErrGatewayNilPusher    = errors.New("gateway: nil pusher")
)
