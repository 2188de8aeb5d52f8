package conn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rookie/pkg/exception"
)

func TestOptionDSN(t *testing.T) {
	testCases := []struct {
		desc string
		opt  Option
		want string
	}{
		{
			desc: "defaults",
			opt:  Option{},
			want: "postgres://localhost:5432?sslmode=disable",
		},
		{
			desc: "credentials and database",
			opt:  Option{Host: "db", Port: 6543, User: "rk", Password: "p@ss", Database: "rookie"},
			want: "postgres://rk:p%40ss@db:6543/rookie?sslmode=disable",
		},
		{
			desc: "params",
			opt:  Option{User: "rk", SSLMode: "require", Params: map[string]string{"application_name": "trader", "": "skip"}},
			want: "postgres://rk@localhost:5432?application_name=trader&sslmode=require",
		},
		{
			desc: "conn string wins",
			opt:  Option{ConnString: "host=x", Host: "ignored"},
			want: "host=x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := tc.opt.DSN()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOptionDSNRejectsPort(t *testing.T) {
	_, err := Option{Port: 70000}.DSN()
	require.ErrorIs(t, err, exception.ErrInvalidConfig)
}

func TestOptionTune(t *testing.T) {
	var open, idle int
	var life time.Duration
	set := func(dst *int) func(int) { return func(n int) { *dst = n } }

	Option{}.tune(set(&open), set(&idle), func(d time.Duration) { life = d })
	assert.Zero(t, open)
	assert.Zero(t, life)

	Option{MaxOpenConns: 8, MaxIdleConns: 2, MaxLifeSecs: 60}.tune(set(&open), set(&idle), func(d time.Duration) { life = d })
	assert.Equal(t, 8, open)
	assert.Equal(t, 2, idle)
	assert.Equal(t, time.Minute, life)
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.Nil(t, c.DB())
	assert.NoError(t, c.Close())
}
