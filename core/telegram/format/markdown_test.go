package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("a_b*c[d`e", MarkdownV1)
	require.NoError(t, err)
	assert.Equal(t, "a\\_b\\*c\\[d\\`e", got)
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("hi. (you)!", MarkdownV2)
	require.NoError(t, err)
	assert.Equal(t, `hi\. \(you\)\!`, got)
}

func TestEscapeMarkdownRejectsUnknownVersion(t *testing.T) {
	_, err := EscapeMarkdown("x", 3)
	assert.Error(t, err)
}
