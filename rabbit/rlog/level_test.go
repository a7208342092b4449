package rlog

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Ordered(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		assert.Less(t, levels[i-1], levels[i])
	}
	assert.Equal(t, "WARNING", LevelWarning.String())
	assert.Equal(t, "LEVEL(7)", Level(7).String())
}

func TestLevelFromSlog(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want Level
	}{
		{slog.LevelDebug - 4, LevelDebug},
		{slog.LevelDebug, LevelDebug},
		{slog.LevelInfo, LevelInfo},
		{slog.LevelInfo + 2, LevelInfo},
		{slog.LevelWarn, LevelWarning},
		{slog.LevelError, LevelError},
		{SlogLevelCritical, LevelCritical},
		{SlogLevelCritical + 8, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromSlog(tt.in), tt.in.String())
	}
	for _, lvl := range Levels() {
		assert.Equal(t, lvl, LevelFromSlog(lvl.Slog()))
	}
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range Levels() {
		got, err := ParseLevel(lvl.String())
		require.NoError(t, err)
		assert.Equal(t, lvl, got)
	}
	got, err := ParseLevel(" warn ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarning, got)

	_, err = ParseLevel("fatal")
	assert.Error(t, err)
}
