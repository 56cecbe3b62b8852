package mdit

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_NoPanic(t *testing.T) {
	ran := false
	err := Guard(func() { ran = true })
	assert.NoError(t, err)
	assert.True(t, ran)
}

func TestGuard_Invariant(t *testing.T) {
	err := Guard(func() { Invariantf("bad value %d", 7) })
	require.Error(t, err)

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, "bad value 7", f.Message)
	assert.Equal(t, "failure_test.go", filepath.Base(f.File))
	assert.Positive(t, f.Line)
	assert.ErrorIs(t, err, ErrInvariant)

	taken := TakeFailure()
	require.NotNil(t, taken)
	assert.Equal(t, f.Message, taken.Message)
	assert.Nil(t, TakeFailure(), "take clears the record")
}

func TestGuard_PlainPanic(t *testing.T) {
	err := Guard(func() {
		var m map[string]int
		m["x"] = 1
	})
	require.Error(t, err)

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Contains(t, f.Message, "nil map")
	assert.Equal(t, "failure_test.go", filepath.Base(f.File))
	assert.NotErrorIs(t, err, ErrInvariant)
	TakeFailure()
}

func TestFailure_IsInvariantOnlyFromInvariantf(t *testing.T) {
	tests := []struct {
		name      string
		fn        func()
		invariant bool
	}{
		{"invariantf", func() { Invariantf("rule %q misbehaved", "x") }, true},
		{"must cast", func() { MustCast[*Paragraph](NewNode(&Text{})) }, true},
		{"nil dereference", func() {
			var n *Node
			n.AppendChild(NewNode(&Text{}))
		}, false},
		{"panic with error", func() { panic(errors.New("boom")) }, false},
		{"panic with string", func() { panic("boom") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Guard(tt.fn)
			require.Error(t, err)
			assert.Equal(t, tt.invariant, errors.Is(err, ErrInvariant))

			var f *Failure
			assert.True(t, errors.As(err, &f), "every abort is a Failure")
			TakeFailure()
		})
	}
}

func TestGuard_ConcurrentCallers(t *testing.T) {
	md := New()
	md.Inline.Add("bang", bang{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out string
			err := Guard(func() { out = md.Parse("a!b").Render() })
			assert.NoError(t, err)
			assert.Equal(t, "<p>a<b>!</b>b</p>\n", out)
		}()
	}
	wg.Wait()
}

func TestFailure_Error(t *testing.T) {
	assert.Equal(t, "boom", (&Failure{Message: "boom"}).Error())
	assert.False(t, errors.Is(&Failure{Message: "boom"}, ErrInvariant))
	assert.Equal(t, "boom (x.go:3)", (&Failure{Message: "boom", File: "x.go", Line: 3}).Error())
}
