package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"golang.org/x/exp/slices"
)

var (
	errBoom = errors.New("boom")
	errStop = errors.New("stop")
)

func drain[T any](is *is.I, q *Chan[T]) ([]T, error) {
	is.Helper()

	elems := []T{}

	for {
		res, err := q.Receive(context.Background())
		is.NoErr(err)

		if res.Closed() {
			return elems, res.Cause()
		}

		elems = append(elems, res.Value())
	}
}

func TestChan_FIFO(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	q := New[int](3)

	for i := 1; i <= 3; i++ {
		is.NoErr(q.Send(ctx, i))
	}

	is.Equal(q.Len(), 3)

	q.Close(nil)

	elems, err := drain(is, q)
	is.NoErr(err)
	is.Equal(elems, []int{1, 2, 3})
}

func TestChan_DropOldest(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	dropped := []any{}

	q := New[int](2, WithOverflow(DropOldest), WithOnUndeliveredElement(func(elem any) {
		dropped = append(dropped, elem)
	}))

	for i := 1; i <= 3; i++ {
		is.NoErr(q.Send(ctx, i))
	}

	q.Close(nil)

	elems, err := drain(is, q)
	is.NoErr(err)
	is.Equal(elems, []int{2, 3})
	is.Equal(dropped, []any{1})
}

func TestChan_DropLatest(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	dropped := []any{}

	q := New[int](2, WithOverflow(DropLatest), WithOnUndeliveredElement(func(elem any) {
		dropped = append(dropped, elem)
	}))

	for i := 1; i <= 3; i++ {
		is.NoErr(q.Send(ctx, i))
	}

	q.Close(nil)

	elems, err := drain(is, q)
	is.NoErr(err)
	is.Equal(elems, []int{1, 2})
	is.Equal(dropped, []any{3})
}

func TestChan_Conflated(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	q := New[int](Conflated)
	is.Equal(q.Cap(), 1)

	for i := 1; i <= 5; i++ {
		is.NoErr(q.Send(ctx, i))
	}

	q.Close(nil)

	elems, err := drain(is, q)
	is.NoErr(err)
	is.Equal(elems, []int{5})
}

func TestChan_Buffered(t *testing.T) {
	is := is.New(t)

	is.Equal(New[int](Buffered).Cap(), DefaultBufferSize)
	is.Equal(New[int](Buffered, WithOverflow(DropOldest)).Cap(), 1)
	is.Equal(New[int](Rendezvous, WithOverflow(DropLatest)).Cap(), 1)
}

func TestChan_Unlimited(t *testing.T) {
	is := is.New(t)

	q := New[int](Unlimited)

	for i := 0; i < 1000; i++ {
		is.NoErr(q.TrySend(i))
	}

	is.Equal(q.Len(), 1000)
}

func TestChan_SuspendBlocksUntilReceive(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	q := New[int](1)

	is.NoErr(q.Send(ctx, 1))
	is.True(errors.Is(q.TrySend(2), ErrFull))

	sent := make(chan error)

	go func() {
		sent <- q.Send(ctx, 2)
	}()

	select {
	case <-sent:
		t.Fatal("send on full queue did not block")
	case <-time.After(20 * time.Millisecond):
	}

	res, err := q.Receive(ctx)
	is.NoErr(err)
	is.Equal(res.Value(), 1)

	is.NoErr(<-sent)

	res, err = q.Receive(ctx)
	is.NoErr(err)
	is.Equal(res.Value(), 2)
}

func TestChan_SendCancel(t *testing.T) {
	is := is.New(t)

	q := New[int](1)

	is.NoErr(q.Send(context.Background(), 1))

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(errBoom)

	is.True(errors.Is(q.Send(ctx, 2), errBoom))
	is.Equal(q.Len(), 1)
}

func TestChan_Rendezvous(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	q := New[int](Rendezvous)

	sent := make(chan error)

	go func() {
		sent <- q.Send(ctx, 1)
	}()

	select {
	case <-sent:
		t.Fatal("rendezvous send returned before receive")
	case <-time.After(20 * time.Millisecond):
	}

	res, err := q.Receive(ctx)
	is.NoErr(err)
	is.Equal(res.Value(), 1)

	is.NoErr(<-sent)
}

func TestChan_RendezvousSendCancel(t *testing.T) {
	is := is.New(t)

	q := New[int](Rendezvous)

	ctx, cancel := context.WithCancelCause(context.Background())

	sent := make(chan error)

	go func() {
		sent <- q.Send(ctx, 1)
	}()

	time.Sleep(10 * time.Millisecond)

	cancel(errBoom)

	is.True(errors.Is(<-sent, errBoom))

	_, ok := q.TryReceive()
	is.True(!ok)
}

func TestChan_RendezvousCancelQueue(t *testing.T) {
	is := is.New(t)

	q := New[int](Rendezvous)

	sent := make(chan error)

	go func() {
		sent <- q.Send(context.Background(), 1)
	}()

	time.Sleep(10 * time.Millisecond)

	q.Cancel(errBoom)

	is.True(errors.Is(<-sent, errBoom))
}

func TestChan_CloseDrains(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	q := New[int](2)

	is.NoErr(q.Send(ctx, 1))

	is.True(q.Close(errBoom))
	is.True(!q.Close(nil))
	is.True(q.IsClosedForSend())

	is.True(errors.Is(q.Send(ctx, 2), errBoom))

	elems, err := drain(is, q)
	is.Equal(elems, []int{1})
	is.True(errors.Is(err, errBoom))
}

func TestChan_CloseNormally(t *testing.T) {
	is := is.New(t)

	q := New[int](2)
	q.Close(nil)

	is.True(errors.Is(q.Send(context.Background(), 1), ErrClosedForSend))

	res, ok := q.TryReceive()
	is.True(ok)
	is.True(res.Closed())
	is.NoErr(res.Cause())
}

func TestChan_CloseWakesReceivers(t *testing.T) {
	is := is.New(t)

	q := New[int](0)

	results := make(chan Result[int], 2)

	grp := sync.WaitGroup{}
	grp.Add(2)

	for i := 0; i < 2; i++ {
		go func() {
			defer grp.Done()

			res, err := q.Receive(context.Background())
			is.NoErr(err)

			results <- res
		}()
	}

	time.Sleep(10 * time.Millisecond)

	q.Close(errBoom)

	grp.Wait()
	close(results)

	for res := range results {
		is.True(res.Closed())
		is.True(errors.Is(res.Cause(), errBoom))
	}
}

func TestChan_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	discarded := []any{}
	causes := []error{}

	q := New[int](Unlimited,
		WithOnUndeliveredElement(func(elem any) {
			discarded = append(discarded, elem)
		}),
		WithOnCancel(func(cause error) {
			causes = append(causes, cause)
		}),
	)

	is.NoErr(q.Send(ctx, 1))
	is.NoErr(q.Send(ctx, 2))

	q.Cancel(nil)
	q.Cancel(errBoom)

	is.Equal(discarded, []any{1, 2})
	is.Equal(len(causes), 1)
	is.True(errors.Is(causes[0], ErrCancelled))

	res, err := q.Receive(ctx)
	is.NoErr(err)
	is.True(res.Closed())
	is.True(errors.Is(res.Cause(), ErrCancelled))
}

func TestChan_CancelAfterClose(t *testing.T) {
	is := is.New(t)

	q := New[int](1)

	is.NoErr(q.Send(context.Background(), 1))

	q.Close(nil)
	q.Cancel(errBoom)

	is.Equal(q.Len(), 0)

	res, ok := q.TryReceive()
	is.True(ok)
	is.True(res.Closed())
	is.NoErr(res.Cause())
}

func TestChan_ReceiveCancel(t *testing.T) {
	is := is.New(t)

	q := New[int](1)

	ctx, cancel := context.WithCancelCause(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel(errBoom)
	}()

	_, err := q.Receive(ctx)
	is.True(errors.Is(err, errBoom))

	is.NoErr(q.Send(context.Background(), 1))

	res, err := q.Receive(ctx)
	is.NoErr(err)
	is.Equal(res.Value(), 1)

	_, err = q.Receive(ctx)
	is.True(errors.Is(err, errBoom))
}

func TestChan_OnUndeliveredTyped(t *testing.T) {
	is := is.New(t)

	dropped := []string{}

	q := New[string](1, WithOverflow(DropLatest), WithOnUndelivered(func(elem string) {
		dropped = append(dropped, elem)
	}))

	is.NoErr(q.TrySend("a"))
	is.NoErr(q.TrySend("b"))

	q.Cancel(nil)

	is.Equal(dropped, []string{"b", "a"})
}

func TestChan_ReceiveCanceledDrainsClosed(t *testing.T) {
	is := is.New(t)

	q := New[int](Unlimited)

	is.NoErr(q.Send(context.Background(), 1))
	is.NoErr(q.Send(context.Background(), 2))

	q.Close(errBoom)

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(errStop)

	elems := []int{}

	for {
		res, err := q.Receive(ctx)
		is.NoErr(err)

		if res.Closed() {
			is.True(errors.Is(res.Cause(), errBoom))
			break
		}

		elems = append(elems, res.Value())
	}

	is.Equal(elems, []int{1, 2})
}

func TestChan_Concurrent(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	q := New[int](4)

	const senders = 4
	const perSender = 250

	grp := sync.WaitGroup{}
	grp.Add(senders)

	for s := 0; s < senders; s++ {
		go func(s int) {
			defer grp.Done()

			for i := 0; i < perSender; i++ {
				is.NoErr(q.Send(ctx, s*perSender+i))
			}
		}(s)
	}

	go func() {
		grp.Wait()
		q.Close(nil)
	}()

	mu := sync.Mutex{}
	received := []int{}

	recvGrp := sync.WaitGroup{}
	recvGrp.Add(3)

	for r := 0; r < 3; r++ {
		go func() {
			defer recvGrp.Done()

			for {
				res, err := q.Receive(ctx)
				is.NoErr(err)

				if res.Closed() {
					return
				}

				mu.Lock()
				received = append(received, res.Value())
				mu.Unlock()
			}
		}()
	}

	recvGrp.Wait()

	slices.Sort(received)

	is.Equal(len(received), senders*perSender)

	for i, elem := range received {
		is.Equal(elem, i)
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	is := is.New(t)

	defer func() {
		is.True(recover() != nil)
	}()

	New[int](-5)
}

func TestOverflow_String(t *testing.T) {
	is := is.New(t)

	is.Equal(Suspend.String(), "Suspend")
	is.Equal(DropOldest.String(), "DropOldest")
	is.Equal(DropLatest.String(), "DropLatest")
}
