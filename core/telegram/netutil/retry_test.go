package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("bad request")))

	assert.True(t, ShouldRetry(timeoutErr{}))
	assert.True(t, ShouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.True(t, ShouldRetry(&url.Error{Op: "Post", Err: timeoutErr{}}))
}

func TestShouldRetryNeverRetriesCancelledContexts(t *testing.T) {
	assert.False(t, ShouldRetry(context.Canceled))
	assert.False(t, ShouldRetry(context.DeadlineExceeded))
	assert.False(t, ShouldRetry(&url.Error{Op: "Post", Err: context.DeadlineExceeded}))
}
