package completion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/internal/loop"
)

type delivery struct {
	op    string
	token entities.Token
	res   Result
}

type RouterSuite struct {
	suite.Suite
	loop      *loop.Loop
	router    *Router
	cancel    context.CancelFunc
	mu        sync.Mutex
	delivered []delivery
	arrived   chan struct{}
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.delivered = nil
	s.arrived = make(chan struct{}, 16)
	s.loop = loop.New()
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go func() { _ = s.loop.Run(ctx) }()

	s.router = NewRouter(s.loop, func(ctx context.Context, op Op, token entities.Token, res Result) {
		s.True(loop.OnLoop(ctx), "delivery must run on the loop")
		s.mu.Lock()
		s.delivered = append(s.delivered, delivery{op: op.Name, token: token, res: res})
		s.mu.Unlock()
		s.arrived <- struct{}{}
	})
}

func (s *RouterSuite) TearDownTest() {
	s.router.Close()
	s.router.Wait()
	s.cancel()
	s.loop.Stop()
}

func (s *RouterSuite) await(n int) {
	for i := 0; i < n; i++ {
		select {
		case <-s.arrived:
		case <-time.After(2 * time.Second):
			s.FailNow("timed out waiting for delivery", "got %d of %d", i, n)
		}
	}
}

func (s *RouterSuite) snapshot() []delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery(nil), s.delivered...)
}

func (s *RouterSuite) TestTwoTokensCompleteOnceInAnyOrder() {
	slow := make(chan struct{})
	s.router.Go(context.Background(), OpKVGet, 1, func(context.Context) Result {
		<-slow
		return Result{Args: []int32{3}, Payload: []byte("one")}
	})
	s.router.Go(context.Background(), OpKVGet, 2, func(context.Context) Result {
		return Success(0)
	})

	s.await(1)
	close(slow)
	s.await(1)

	got := s.snapshot()
	s.Require().Len(got, 2)
	s.Equal(entities.Token(2), got[0].token)
	s.Equal(entities.Token(1), got[1].token)
	s.Equal([]byte("one"), got[1].res.Payload)
	s.Zero(s.router.Outstanding())
}

func (s *RouterSuite) TestPanicDeliversFailure() {
	s.router.Go(context.Background(), OpFetch, 9, func(context.Context) Result {
		panic("adapter fault")
	})
	s.await(1)

	got := s.snapshot()
	s.Require().Len(got, 1)
	s.Equal([]int32{0, 0}, got[0].res.Args)
}

func (s *RouterSuite) TestFailUsesFailureShape() {
	s.router.Fail(OpKVPut, 4)
	s.await(1)

	got := s.snapshot()
	s.Require().Len(got, 1)
	s.Equal("kv.put", got[0].op)
	s.Equal([]int32{-1}, got[0].res.Args)
}

func (s *RouterSuite) TestResolveIsNotReentrant() {
	err := s.loop.Do(context.Background(), func(context.Context) error {
		s.router.Resolve(OpPermission, 5, Success(1))
		s.Empty(s.snapshot(), "delivery must wait for the next loop turn")
		return nil
	})
	s.Require().NoError(err)
	s.await(1)
	s.Len(s.snapshot(), 1)
}

func (s *RouterSuite) TestAfter() {
	s.router.After(time.Millisecond, OpTimer, 77)
	s.Equal(1, s.router.Outstanding())
	s.await(1)

	got := s.snapshot()
	s.Require().Len(got, 1)
	s.Equal(entities.Token(77), got[0].token)
	s.Empty(got[0].res.Args)
}

func (s *RouterSuite) TestCloseDiscardsLateCompletions() {
	release := make(chan struct{})
	s.router.Go(context.Background(), OpClipboard, 1, func(context.Context) Result {
		<-release
		return Success(1)
	})
	s.router.After(time.Millisecond, OpTimer, 2)

	s.router.Close()
	close(release)
	s.router.Wait()

	// Flush the loop so any posted delivery would have run.
	time.Sleep(5 * time.Millisecond)
	s.Require().NoError(s.loop.Do(context.Background(), func(context.Context) error { return nil }))
	s.Empty(s.snapshot())

	s.router.Fail(OpKVGet, 3)
	s.Zero(s.router.Outstanding())
}

func TestFailure_CopiesShape(t *testing.T) {
	res := Failure(OpFileOpen)
	require.Equal(t, []int32{0, 0}, res.Args)
	res.Args[0] = 9
	assert.Equal(t, []int32{0, 0}, OpFileOpen.Failure)
}
