package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options
	}{
		{
			name: "no arguments",
			args: nil,
			want: options{},
		},
		{
			name: "long help flag",
			args: []string{"--help"},
			want: options{showHelp: true},
		},
		{
			name: "short help flag",
			args: []string{"-h"},
			want: options{showHelp: true},
		},
		{
			name: "direct flag",
			args: []string{"--direct"},
			want: options{direct: true},
		},
		{
			name: "unrecognized arguments are ignored",
			args: []string{"--verbose", "extra", "-x"},
			want: options{},
		},
		{
			name: "recognized flags mixed with noise",
			args: []string{"positional", "--direct", "--unknown=1", "-h"},
			want: options{showHelp: true, direct: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseArgs(tt.args))
		})
	}
}

func TestUsageListsFlagsAndEnvironment(t *testing.T) {
	for _, want := range []string{
		"--direct",
		"--help",
		"PROXY_HOST",
		"PROXY_PORT",
		"CHROME_PORT",
		"USE_DIRECT",
		"TARGET_URL",
		"OUTPUT_FILE",
		"LOG_LEVEL",
	} {
		assert.Contains(t, usage, want)
	}
}
