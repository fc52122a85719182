package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RegisterAndInvoke(t *testing.T) {
	r := New()
	var got Context
	r.Register("prog", func(ctx Context) { got = ctx })

	r.Invoke("prog", Context{GrammarName: "g1"})

	assert.Equal(t, "prog", got.Production)
	assert.Equal(t, "g1", got.GrammarName)
}

func Test_Invoke_UnregisteredIsNoOp(t *testing.T) {
	r := New()
	assert.NotPanics(t, func() { r.Invoke("nope", Context{}) })
}

func Test_Invoke_RecoversPanic(t *testing.T) {
	r := New()
	r.Register("prog", func(ctx Context) { panic("boom") })

	assert.NotPanics(t, func() { r.Invoke("prog", Context{}) })
}

func Test_Register_ReplacesPriorBinding(t *testing.T) {
	r := New()
	calls := 0
	r.Register("prog", func(ctx Context) { calls = 1 })
	r.Register("prog", func(ctx Context) { calls = 2 })

	r.Invoke("prog", Context{})
	assert.Equal(t, 2, calls)
}

func Test_Unregister(t *testing.T) {
	r := New()
	called := false
	r.Register("prog", func(ctx Context) { called = true })
	r.Unregister("prog")

	r.Invoke("prog", Context{})
	assert.False(t, called)
}

func Test_SetGetClearContext(t *testing.T) {
	r := New()
	r.SetContext(map[string]any{"key": "value"})
	assert.Equal(t, "value", r.GetContext()["key"])

	var seen map[string]any
	r.Register("prog", func(ctx Context) { seen = ctx.CustomContext })
	r.Invoke("prog", Context{})
	assert.Equal(t, "value", seen["key"])

	r.ClearContext()
	assert.Empty(t, r.GetContext())
}

func Test_Has(t *testing.T) {
	r := New()
	assert.False(t, r.Has("prog"))
	r.Register("prog", func(ctx Context) {})
	assert.True(t, r.Has("prog"))
}
