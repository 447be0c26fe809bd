package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []map[string]string{
		{"v": "blue"},
		{"v": "42"},
		{"v": "true"},
		{"v": "hello world", "p": "3"},
		{"v": "a&b=c?d"},
	}
	for _, params := range cases {
		data := Pack("step", params)
		action, got := Unpack(data)
		require.Equal(t, "step", action)
		assert.Equal(t, params, got)
	}
}

func TestPackNoParams(t *testing.T) {
	assert.Equal(t, "hello", Pack("hello", nil))
	assert.Equal(t, "hello", Pack("hello", map[string]string{}))

	action, params := Unpack("hello")
	assert.Equal(t, "hello", action)
	assert.Empty(t, params)
}

func TestPackOrderedDeterministic(t *testing.T) {
	params := map[string]string{"b": "2", "a": "1", "c": "3"}
	assert.Equal(t, "act?a=1&b=2&c=3", PackOrdered("act", params))
}

func TestUnpackTelebotFraming(t *testing.T) {
	action, params := Unpack("\funique|step?v=red")
	assert.Equal(t, "step", action)
	assert.Equal(t, "red", params["v"])
}

func TestUnpackEmptyQuery(t *testing.T) {
	action, params := Unpack("act?")
	assert.Equal(t, "act", action)
	assert.Empty(t, params)
}
