package memo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNilFunction(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() {
		New(10, nil)
	})
}

func TestMemoNoArguments(t *testing.T) {
	assert := assert.New(t)

	var (
		callCount int32
		owner     = new(struct{ unused int })

		m = New(1, func(interface{}, ...interface{}) (interface{}, error) {
			atomic.AddInt32(&callCount, 1)
			return 20, nil
		})
	)

	for i := 0; i < 5; i++ {
		value, err := m.Call(owner)
		assert.Equal(20, value)
		assert.NoError(err)
	}

	assert.Equal(int32(1), atomic.LoadInt32(&callCount))
	assert.Equal(Info{Hits: 4, Misses: 1, MaxSize: 1, Size: 1}, m.Info(owner))
}

func TestMemoLRUEviction(t *testing.T) {
	assert := assert.New(t)

	var (
		callCount int
		owner     = new(struct{ unused int })

		m = New(2, func(_ interface{}, args ...interface{}) (interface{}, error) {
			callCount++
			return args[0].(int) * 10, nil
		})
	)

	for _, x := range []int{7, 9, 7, 9, 7, 9, 8, 8, 8, 9, 9, 9, 8, 8, 8, 7} {
		value, err := m.Call(owner, x)
		assert.Equal(x*10, value)
		assert.NoError(err)
	}

	assert.Equal(4, callCount)
	assert.Equal(Info{Hits: 12, Misses: 4, MaxSize: 2, Size: 2}, m.Info(owner))
}

func TestMemoZeroMaxSize(t *testing.T) {
	assert := assert.New(t)

	var (
		callCount int
		owner     = new(struct{ unused int })

		m = New(0, func(interface{}, ...interface{}) (interface{}, error) {
			callCount++
			return 20, nil
		})
	)

	t.Log("A zero maximum size disables storage but still counts misses")
	for i := 0; i < 5; i++ {
		value, err := m.Call(owner)
		assert.Equal(20, value)
		assert.NoError(err)
	}

	assert.Equal(5, callCount)
	assert.Equal(Info{Hits: 0, Misses: 5, MaxSize: 0, Size: 0}, m.Info(owner))
}

func TestMemoUnbounded(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var (
		owner = new(struct{ unused int })
		m     *Memo
	)

	m = Unbounded(func(owner interface{}, args ...interface{}) (interface{}, error) {
		n := args[0].(int)
		if n < 2 {
			return n, nil
		}

		first, err := m.Call(owner, n-1)
		if err != nil {
			return nil, err
		}

		second, err := m.Call(owner, n-2)
		if err != nil {
			return nil, err
		}

		return first.(int) + second.(int), nil
	})

	expected := []int{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233, 377, 610}
	for n, want := range expected {
		value, err := m.Call(owner, n)
		require.NoError(err)
		assert.Equal(want, value)
	}

	assert.Equal(Info{Hits: 28, Misses: 16, MaxSize: -1, Size: 16}, m.Info(owner))

	t.Log("Clear resets the owner's entries and counters")
	m.Clear(owner)
	assert.Equal(Info{MaxSize: -1}, m.Info(owner))

	value, err := m.Call(owner, 2)
	assert.Equal(1, value)
	assert.NoError(err)
	assert.Equal(Info{Hits: 0, Misses: 3, MaxSize: -1, Size: 3}, m.Info(owner))
}

func TestMemoPerOwnerIsolation(t *testing.T) {
	assert := assert.New(t)

	type owner struct {
		id        int
		callCount int
	}

	var (
		a = &owner{id: 5}
		b = &owner{id: 5}
		c = &owner{id: 7}

		m = New(2, func(o interface{}, args ...interface{}) (interface{}, error) {
			o.(*owner).callCount++
			return args[0].(int)*10 + o.(*owner).id, nil
		})
	)

	assert.Equal(Info{MaxSize: 2}, m.Info(a))

	for _, x := range []int{1, 2, 2, 3, 1, 1, 1, 2, 3, 3} {
		value, err := m.Call(a, x)
		assert.Equal(x*10+5, value)
		assert.NoError(err)
	}

	assert.Equal([]int{6, 0, 0}, []int{a.callCount, b.callCount, c.callCount})
	assert.Equal(Info{Hits: 4, Misses: 6, MaxSize: 2, Size: 2}, m.Info(a))

	for _, x := range []int{1, 2, 1, 1, 1, 1, 3, 2, 2, 2} {
		value, err := m.Call(b, x)
		assert.Equal(x*10+5, value)
		assert.NoError(err)
	}

	assert.Equal([]int{6, 4, 0}, []int{a.callCount, b.callCount, c.callCount})
	assert.Equal(Info{Hits: 6, Misses: 4, MaxSize: 2, Size: 2}, m.Info(b))

	for _, x := range []int{2, 1, 1, 1, 1, 2, 1, 3, 2, 1} {
		value, err := m.Call(c, x)
		assert.Equal(x*10+7, value)
		assert.NoError(err)
	}

	assert.Equal([]int{6, 4, 5}, []int{a.callCount, b.callCount, c.callCount})
	assert.Equal(Info{Hits: 5, Misses: 5, MaxSize: 2, Size: 2}, m.Info(c))
}

func TestMemoDistinguishesArgumentTypes(t *testing.T) {
	assert := assert.New(t)

	var (
		owner = new(struct{ unused int })

		m = Unbounded(func(_ interface{}, args ...interface{}) (interface{}, error) {
			return args[0], nil
		})
	)

	value, err := m.Call(owner, 3)
	assert.Equal(3, value)
	assert.NoError(err)

	value, err = m.Call(owner, 3.0)
	assert.Equal(3.0, value)
	assert.NoError(err)

	t.Log("An int and a float of equal value are distinct keys")
	assert.Equal(Info{Hits: 0, Misses: 2, MaxSize: -1, Size: 2}, m.Info(owner))

	value, err = m.Call(owner, 3)
	assert.Equal(3, value)
	assert.NoError(err)
	assert.Equal(Info{Hits: 1, Misses: 2, MaxSize: -1, Size: 2}, m.Info(owner))
}

func TestMemoErrorsAreNotCached(t *testing.T) {
	assert := assert.New(t)

	var (
		expectedError = errors.New("expected")
		callCount     int
		owner         = new(struct{ unused int })

		m = New(128, func(_ interface{}, args ...interface{}) (interface{}, error) {
			callCount++
			if args[0].(int) > 2 {
				return nil, expectedError
			}

			return "abc"[args[0].(int) : args[0].(int)+1], nil
		})
	)

	value, err := m.Call(owner, 0)
	assert.Equal("a", value)
	assert.NoError(err)

	for i := 0; i < 2; i++ {
		value, err = m.Call(owner, 15)
		assert.Nil(value)
		assert.Equal(expectedError, err)
	}

	t.Log("Each failed call must invoke the function again")
	assert.Equal(3, callCount)
	assert.Equal(Info{Hits: 0, Misses: 3, MaxSize: 128, Size: 1}, m.Info(owner))
}

func TestMemoUncacheableArgument(t *testing.T) {
	assert := assert.New(t)

	var (
		callCount int
		owner     = new(struct{ unused int })

		m = Unbounded(func(interface{}, ...interface{}) (interface{}, error) {
			callCount++
			return nil, nil
		})
	)

	value, err := m.Call(owner, []string{"not", "comparable"})
	assert.Nil(value)
	assert.Equal(ErrUncacheableArg, err)

	t.Log("The wrapped function must not run for an uncacheable argument")
	assert.Zero(callCount)
}

func TestMemoUncacheableOwner(t *testing.T) {
	assert := assert.New(t)

	m := Unbounded(func(interface{}, ...interface{}) (interface{}, error) {
		return nil, nil
	})

	value, err := m.Call(map[string]int{})
	assert.Nil(value)
	assert.Equal(ErrUncacheableOwner, err)
}

func TestMemoClearAll(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var (
		a = new(struct{ unused int })
		b = new(struct{ unused int })

		m = Unbounded(func(_ interface{}, args ...interface{}) (interface{}, error) {
			return args[0], nil
		})
	)

	_, err := m.Call(a, 1)
	require.NoError(err)
	_, err = m.Call(b, 2)
	require.NoError(err)

	m.ClearAll()
	assert.Equal(Info{MaxSize: -1}, m.Info(a))
	assert.Equal(Info{MaxSize: -1}, m.Info(b))
}

func TestMemoMetrics(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var (
		hits      = generic.NewCounter("hits")
		misses    = generic.NewCounter("misses")
		evictions = generic.NewCounter("evictions")

		owner = new(struct{ unused int })

		m = New(
			1,
			func(_ interface{}, args ...interface{}) (interface{}, error) {
				return args[0], nil
			},
			WithHits(hits),
			WithMisses(misses),
			WithEvictions(evictions),
		)
	)

	for _, x := range []int{1, 1, 2, 2, 1} {
		value, err := m.Call(owner, x)
		require.NoError(err)
		assert.Equal(x, value)
	}

	assert.Equal(float64(2), hits.Value())
	assert.Equal(float64(3), misses.Value())
	assert.Equal(float64(2), evictions.Value())
}

func TestMemoConcurrent(t *testing.T) {
	assert := assert.New(t)

	const (
		workers    = 5
		iterations = 11
	)

	var (
		owner   = new(struct{ unused int })
		barrier = make(chan struct{})

		m = New(workers*iterations, func(_ interface{}, args ...interface{}) (interface{}, error) {
			return 3 * args[0].(int), nil
		})
	)

	var waitGroup sync.WaitGroup
	waitGroup.Add(workers)
	for k := 0; k < workers; k++ {
		go func(k int) {
			defer waitGroup.Done()
			<-barrier
			for i := 0; i < iterations; i++ {
				value, err := m.Call(owner, k)
				assert.Equal(3*k, value)
				assert.NoError(err)
			}
		}(k)
	}

	close(barrier)
	waitGroup.Wait()

	info := m.Info(owner)
	assert.Equal(workers, info.Size)
	assert.Equal(workers, info.Misses)
	assert.Equal(workers*(iterations-1), info.Hits)
}
