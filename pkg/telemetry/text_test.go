package telemetry

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedError struct {
	name    string
	message string
}

func (e namedError) Name() string    { return e.name }
func (e namedError) Message() string { return e.message }

type TimeoutError struct{ op string }

func (e *TimeoutError) Error() string { return e.op + " timed out" }

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"a\n\nb   c", "a b c"},
		{"tab\tand\r\nreturn", "tab and return"},
		{"  padded  ", " padded "},
		{"", ""},
		{42, "42"},
		{nil, "null"},
		{true, "true"},
		{errors.New("x\ny"), "x y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWhitespace(tt.in), "input %#v", tt.in)
	}
}

func TestRenderError_Describable(t *testing.T) {
	got := RenderError(namedError{name: "TypeError", message: "bad\ninput"})
	assert.Equal(t, "Type=TypeError, Message=bad input", got)
}

func TestRenderError_EscapesMarkup(t *testing.T) {
	got := RenderError(namedError{name: "SyntaxError", message: `unexpected <tag> & "quote"`})
	assert.Equal(t, "Type=SyntaxError, Message=unexpected &lt;tag&gt; &amp; &#34;quote&#34;", got)
}

func TestRenderError_NotSet(t *testing.T) {
	var nilErr *TimeoutError
	for _, v := range []any{nil, nilErr, "", false, 0, 0.0, math.NaN()} {
		assert.Equal(t, "Type=not-set, Message=not-set", RenderError(v), "input %#v", v)
	}
}

func TestRenderError_Defaults(t *testing.T) {
	assert.Equal(t, "Type=Error, Message=undefined", RenderError(namedError{}))
	assert.Equal(t, "Type=Error, Message=plain failure", RenderError(errors.New("plain failure")))
	assert.Equal(t, "Type=Error, Message=wrapped: inner", RenderError(fmt.Errorf("wrapped: %w", errors.New("inner"))))
}

func TestRenderError_UsesExportedTypeName(t *testing.T) {
	pathErr := &fs.PathError{Op: "open", Path: "/etc/vitals.yaml", Err: fs.ErrNotExist}
	assert.Equal(t, "Type=PathError, Message=open /etc/vitals.yaml: file does not exist", RenderError(pathErr))
	assert.Equal(t, "Type=TimeoutError, Message=dial timed out", RenderError(&TimeoutError{op: "dial"}))
}

func TestRenderError_NonErrorValue(t *testing.T) {
	// Plain values have no message of their own.
	assert.Equal(t, "Type=Error, Message=undefined", RenderError("disk full"))
	assert.Equal(t, "Type=Error, Message=undefined", RenderError(42))
	assert.Equal(t, "Type=Error, Message=undefined", RenderError(true))
}

func TestDescribe_PassesThroughDescribable(t *testing.T) {
	d := Describe(namedError{name: "RangeError", message: "too big"})
	assert.Equal(t, "RangeError", d.Name())
	assert.Equal(t, "too big", d.Message())
}

func TestIsInt(t *testing.T) {
	assert.True(t, IsInt(3))
	assert.True(t, IsInt("42"))
	assert.True(t, IsInt(4.0))
	assert.True(t, IsInt("-7"))
	assert.False(t, IsInt(4.5))
	assert.False(t, IsInt("4.5"))
	assert.False(t, IsInt("abc"))
	assert.False(t, IsInt(nil))
	assert.False(t, IsInt(true))
}
