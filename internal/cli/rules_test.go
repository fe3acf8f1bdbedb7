package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRulesCommand_FormatFlag(t *testing.T) {
	cmd := newRulesCommand()
	flag := cmd.Flags().Lookup("format")
	assert.NotNil(t, flag)
	assert.Equal(t, "text", flag.DefValue)
}

func TestRulesCommand_RejectsExtraArgs(t *testing.T) {
	cmd := newRulesCommand()
	err := cmd.Args(cmd, []string{"a.cmd", "b.cmd"})
	assert.Error(t, err)
}
