package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryCache_LRU(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Minute))
	_, err := mc.Get(ctx, "a") // a becomes most recent
	require.NoError(t, err)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Minute))

	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	got, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryClock(clock.now), WithMemoryTTL(time.Minute))

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))
	clock.advance(59 * time.Second)
	_, err := mc.Get(ctx, "k")
	require.NoError(t, err)

	clock.advance(time.Second)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	buf := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'z'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, mc.Delete(ctx, "k", "missing"))
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLayeredCache(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	var seen []string
	lc := NewLayeredCache(NewMemoryCache(), remote, func(layer string, hit bool) {
		if hit {
			seen = append(seen, layer+":hit")
		} else {
			seen = append(seen, layer+":miss")
		}
	})

	require.NoError(t, remote.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	_, err = lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"memory:miss", "redis:hit", "memory:hit"}, seen)

	_, err = lc.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, lc.Delete(ctx, "k"))
	_, err = remote.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	lc := NewLayeredCache(NewMemoryCache(), nil, nil)

	type payload struct {
		Symbol string
		Closes []float64
	}
	in := payload{Symbol: "MSFT", Closes: []float64{1.5, 2.5}}
	require.NoError(t, SetJSON(ctx, lc, Key("bars", "MSFT", "1y"), in, time.Minute))

	out, err := GetJSON[payload](ctx, lc, "bars:MSFT:1y")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = GetJSON[payload](ctx, lc, "bars:none")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
