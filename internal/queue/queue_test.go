// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_RunsInOrder(t *testing.T) {
	q := New(4, nil)
	q.Start()
	q.Start()
	defer q.Close()

	var got []int
	for i := range 10 {
		require.NoError(t, q.Enqueue(Func(func(context.Context) error {
			got = append(got, i)
			return nil
		})))
	}

	require.NoError(t, q.RunSync(func(context.Context) error { return nil }))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueue_RunSyncReturnsError(t *testing.T) {
	q := New(0, nil)
	q.Start()
	defer q.Close()

	boom := errors.New("boom")
	err := q.RunSync(func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestQueue_ReportsErrors(t *testing.T) {
	var mtx sync.Mutex
	var errs []error

	q := New(1, func(err error) {
		mtx.Lock()
		defer mtx.Unlock()
		errs = append(errs, err)
	})
	q.Start()

	boom := errors.New("boom")
	require.NoError(t, q.Enqueue(Func(func(context.Context) error { return boom })))
	require.NoError(t, q.Enqueue(nil))
	_ = q.RunSync(func(context.Context) error { return nil })
	q.Close()

	mtx.Lock()
	defer mtx.Unlock()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestQueue_NotStartedAndClosed(t *testing.T) {
	q := New(1, nil)
	require.ErrorIs(t, q.Enqueue(Func(func(context.Context) error { return nil })), ErrNotStarted)

	q.Start()
	q.Close()

	require.ErrorIs(t, q.Enqueue(Func(func(context.Context) error { return nil })), ErrClosed)
	require.ErrorIs(t, q.RunSync(func(context.Context) error { return nil }), ErrClosed)
}
