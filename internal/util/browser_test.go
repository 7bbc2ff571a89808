package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserCommand(t *testing.T) {
	t.Parallel()

	url := "http://localhost:20261"
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
		{"darwin", "open", []string{url}},
		{"linux", "xdg-open", []string{url}},
		{"freebsd", "xdg-open", []string{url}},
	}
	for _, tt := range tests {
		name, args := browserCommand(tt.goos, url)
		assert.Equal(t, tt.name, name, tt.goos)
		assert.Equal(t, tt.args, args, tt.goos)
	}
}

func TestFallbackCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [][]string{{"explorer", "u"}}, fallbackCommands("windows", "u"))
	assert.Len(t, fallbackCommands("linux", "u"), 4)
	assert.Nil(t, fallbackCommands("darwin", "u"))
}
