package exception

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"
)

func TestWrappedSentinelsMatch(t *testing.T) {
	for _, sentinel := range []error{ErrRiskPriceTick, ErrSessionLoginTrade, ErrInvalidConfig, ErrGatewayDisconnected} {
		err := errors.Wrapf(sentinel, "err: %+v", stderrors.New("venue said no"))
		require.True(t, stderrors.Is(err, sentinel), "%v", sentinel)
		require.ErrorIs(t, errors.Wrap(err, "start trading"), sentinel)
	}
}
