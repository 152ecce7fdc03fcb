package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Debug  bool
		Expect zapcore.Level
	}{
		{"Info", "info", false, zapcore.InfoLevel},
		{"Warn", "warn", false, zapcore.WarnLevel},
		{"Garbage", "loud", false, zapcore.InfoLevel},
		{"DebugWins", "error", true, zapcore.DebugLevel},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, Level(c.Given, c.Debug).Level())
		})
	}
}

func TestInitLog(t *testing.T) {
	l := InitLog(Level("info", false))

	assert.NotNil(t, l)
}
