package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystem_NowMillis(t *testing.T) {
	t.Parallel()

	before := time.Now().UnixMilli()
	got := System{}.NowMillis()
	after := time.Now().UnixMilli()

	require.GreaterOrEqual(t, got, before)
	require.LessOrEqual(t, got, after)
}

func TestManual(t *testing.T) {
	t.Parallel()

	c := NewManual(1000)
	require.Equal(t, int64(1000), c.NowMillis())

	require.Equal(t, int64(1500), c.Advance(500))
	require.Equal(t, int64(1500), c.NowMillis())

	c.Set(42)
	require.Equal(t, int64(42), c.NowMillis())

	t.Run("concurrent_advance", func(t *testing.T) {
		t.Parallel()

		c := NewManual(0)
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Advance(1)
			}()
		}
		wg.Wait()
		require.Equal(t, int64(100), c.NowMillis())
	})
}
