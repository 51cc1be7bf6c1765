package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCmdFlags(t *testing.T) {
	cmd := newUploadCmd()

	tests := []struct {
		flag     string
		expected string
	}{
		{flag: "user", expected: "me"},
		{flag: "content-type", expected: "message/rfc822"},
		{flag: "resumable", expected: "false"},
		{flag: "insert", expected: "false"},
		{flag: "chunk-size", expected: "0"},
		{flag: "max-retries", expected: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.expected, f.DefValue)
		})
	}
}

func TestUploadCmdRequiresFile(t *testing.T) {
	cmd := newUploadCmd()
	cmd.SetArgs([]string{"--token", "tok"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}
