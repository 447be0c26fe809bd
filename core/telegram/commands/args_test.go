package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsTyped(t *testing.T) {
	cmd := Command{Args: []Arg{
		{Name: "username", Kind: KindString, Required: true},
		{Name: "pin", Kind: KindInt},
	}}

	args, err := cmd.ParseArgs([]string{"@alice", "1234"})
	require.NoError(t, err)
	assert.Equal(t, "@alice", args["username"])
	assert.Equal(t, int64(1234), args["pin"])
}

func TestParseArgsMissingRequired(t *testing.T) {
	cmd := Command{Args: []Arg{{Name: "username", Required: true}}}
	_, err := cmd.ParseArgs(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USERNAME")
}

func TestParseArgsDefault(t *testing.T) {
	cmd := Command{Args: []Arg{{Name: "page", Kind: KindInt, Default: "1"}}}
	args, err := cmd.ParseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), args["page"])
}

func TestParseArgsVariadic(t *testing.T) {
	cmd := Command{Args: []Arg{{Name: "users", Kind: KindInt, Variadic: true}}}
	args, err := cmd.ParseArgs([]string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, args["users"])

	args, err = cmd.ParseArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args["users"])
}

func TestParseArgsBadInt(t *testing.T) {
	cmd := Command{Args: []Arg{{Name: "pin", Kind: KindInt, Required: true}}}
	_, err := cmd.ParseArgs([]string{"abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIN")
}

func TestSyntaxAndUsage(t *testing.T) {
	cmd := Command{
		Description: "Promote a user to admin",
		Args: []Arg{
			{Name: "username", Required: true, Description: "Username of Telegram user"},
			{Name: "note"},
		},
	}
	assert.Equal(t, "USERNAME [NOTE]", cmd.Syntax())

	usage := cmd.Usage("/promote")
	assert.Contains(t, usage, "/promote USERNAME [NOTE]")
	assert.Contains(t, usage, "Promote a user to admin")
	assert.Contains(t, usage, "USERNAME - Username of Telegram user")
}
