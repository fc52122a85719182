package arena

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/stepparser/internal/stepparse/stepperr"
)

func Test_Pool_AcquireRelease(t *testing.T) {
	assert := assert.New(t)

	a := New("test-arena")
	p := NewPool(a, "widgets", func() int { return 0 }, 2, 4)

	h1, v1, err := p.Acquire()
	assert.NoError(err)
	assert.Equal(0, v1)

	assert.Equal(1, p.InUse())

	err = p.Release(h1)
	assert.NoError(err)
	assert.Equal(0, p.InUse())
}

func Test_Pool_ReleaseUnknownHandle(t *testing.T) {
	assert := assert.New(t)

	a := New("test-arena")
	p := NewPool(a, "widgets", func() int { return 0 }, 0, 4)

	err := p.Release(Handle{})
	assert.Error(err)

	kind, ok := stepperr.KindOf(err)
	assert.True(ok)
	assert.Equal(stepperr.KindInvalidHandle, kind)
}

func Test_Pool_Exhaustion(t *testing.T) {
	assert := assert.New(t)

	a := New("test-arena")
	p := NewPool(a, "widgets", func() int { return 0 }, 0, 2)

	_, _, err := p.Acquire()
	assert.NoError(err)
	_, _, err = p.Acquire()
	assert.NoError(err)
	_, _, err = p.Acquire()
	assert.Error(err)
	assert.True(errors.Is(err, stepperr.Is(stepperr.KindPoolExhausted)))
}

func Test_Arena_Dispose(t *testing.T) {
	assert := assert.New(t)

	a := New("test-arena")
	p := NewPool(a, "widgets", func() int { return 0 }, 1, 0)

	a.Dispose()
	assert.True(a.Disposed())

	_, _, err := p.Acquire()
	assert.Error(err)
	assert.True(errors.Is(err, stepperr.Is(stepperr.KindPoolDisposed)))
}

func Test_Pool_Stats(t *testing.T) {
	assert := assert.New(t)

	a := New("test-arena")
	p := NewPool(a, "widgets", func() int { return 0 }, 3, 10)

	h, _, err := p.Acquire()
	assert.NoError(err)

	stats := p.Stats()
	assert.Equal("widgets", stats.Name)
	assert.Equal(1, stats.InUse)
	assert.Equal(10, stats.MaxCapacity)

	assert.NoError(p.Release(h))
	assert.Equal(0, p.Stats().InUse)
}
