package xscript_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xdiag/pkg/diagnostics/xscript"
)

func TestNewBreakerGenerator_NilGenerator(t *testing.T) {
	_, err := xscript.NewBreakerGenerator(nil, xscript.BreakerSettings{})
	assert.ErrorIs(t, err, xscript.ErrNilGenerator)
}

func TestBreakerGenerator_Opens(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	gen := xscript.GeneratorFunc(func(string) ([]string, error) {
		calls++
		return nil, boom
	})

	var transitions []string
	bg, err := xscript.NewBreakerGenerator(gen, xscript.BreakerSettings{
		Name:        "script",
		MaxFailures: 2,
		OpenTimeout: time.Minute,
		OnStateChange: func(name, from, to string) {
			transitions = append(transitions, name+":"+from+"->"+to)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", bg.State())

	for range 2 {
		_, err = bg.Generate("req")
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", bg.State())
	assert.Equal(t, []string{"script:closed->open"}, transitions)

	_, err = bg.Generate("req")
	assert.ErrorIs(t, err, xscript.ErrCircuitOpen)
	assert.Equal(t, 2, calls, "open circuit must not call the generator")
}

func TestBreakerGenerator_PassesThrough(t *testing.T) {
	gen := xscript.GeneratorFunc(func(id string) ([]string, error) {
		return []string{"<script>" + id + "</script>"}, nil
	})
	bg, err := xscript.NewBreakerGenerator(gen, xscript.BreakerSettings{})
	require.NoError(t, err)

	tags, err := bg.Generate("abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"<script>abc</script>"}, tags)
}

func TestBreakerGenerator_WithProvider(t *testing.T) {
	gen := xscript.GeneratorFunc(func(string) ([]string, error) { return nil, errors.New("down") })
	bg, err := xscript.NewBreakerGenerator(gen, xscript.BreakerSettings{MaxFailures: 1})
	require.NoError(t, err)

	var errs []error
	onError := func(_ string, err error) { errs = append(errs, err) }
	for _, id := range []string{"a", "b"} {
		p, err := xscript.NewProvider(id, bg, func() bool { return true }, onError)
		require.NoError(t, err)
		assert.Empty(t, p.GetScriptTags())
	}
	require.Len(t, errs, 2)
	assert.NotErrorIs(t, errs[0], xscript.ErrCircuitOpen)
	assert.ErrorIs(t, errs[1], xscript.ErrCircuitOpen)
}
