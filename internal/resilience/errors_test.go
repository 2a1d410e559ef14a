package resilience

import (
	"errors"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient_Nil(t *testing.T) {
	assert.False(t, IsTransient(nil))
}

func TestIsTransient_PgCodes(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"40001", true},  // serialization failure
		{"40P01", true},  // deadlock
		{"53300", true},  // too many connections
		{"08006", true},  // connection failure
		{"23505", false}, // unique violation
		{"42P10", false}, // invalid column reference (bad ON CONFLICT target)
		{"22P02", false}, // invalid text representation
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code, Message: "x"}
			assert.Equal(t, tt.want, IsTransient(err))
		})
	}
}

func TestIsTransient_WrappedPgError(t *testing.T) {
	err := eris.Wrap(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"}, "ingest: upsert")
	assert.True(t, IsTransient(err))
}

func TestIsTransient_Syscall(t *testing.T) {
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(syscall.ECONNREFUSED))
}

func TestIsTransient_StringPatterns(t *testing.T) {
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(errors.New("write: broken pipe")))
	assert.True(t, IsTransient(errors.New("dial: i/o timeout")))
	assert.False(t, IsTransient(errors.New("syntax error at or near")))
}
