package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunExitCodes(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	assert.Equal(t, 0, run([]string{"--help"}))
	assert.Contains(t, out.String(), "report")

	assert.Equal(t, 1, run([]string{"report"}))
	assert.Equal(t, 1, run([]string{"serve", "extra"}))
}
