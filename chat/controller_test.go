package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"docchat/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records calls and answers from a scripted function.
// When block is set, Chat waits on it before returning, which lets
// tests observe the in-flight state.
type fakeTransport struct {
	mu          sync.Mutex
	chatFn      func(sessionID, question string, history []api.HistoryEntry) (*api.ChatResponse, error)
	block       chan struct{}
	chatCalls   int
	lastHistory []api.HistoryEntry
	deleted     []string
	deleteErr   error
}

func (f *fakeTransport) Chat(ctx context.Context, sessionID, question string, history []api.HistoryEntry) (*api.ChatResponse, error) {
	f.mu.Lock()
	f.chatCalls++
	f.lastHistory = history
	block := f.block
	fn := f.chatFn
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fn == nil {
		return &api.ChatResponse{Answer: "ok"}, nil
	}
	return fn(sessionID, question, history)
}

func (f *fakeTransport) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, sessionID)
	return f.deleteErr
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}

func (f *fakeTransport) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newTestController(ft *fakeTransport) *Controller {
	store := NewStore()
	store.SetSession(demoSession())
	return NewController(ft, store)
}

func TestSendAppendsTurn(t *testing.T) {
	ft := &fakeTransport{
		chatFn: func(sessionID, question string, history []api.HistoryEntry) (*api.ChatResponse, error) {
			return &api.ChatResponse{Answer: "It covers X.", SourcePages: []int{2, 5}}, nil
		},
	}
	c := newTestController(ft)
	defer c.Close()

	require.NoError(t, c.Send(context.Background(), "Summarize this"))

	msgs := c.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "It covers X.", msgs[2].Content)
	assert.Equal(t, []int{2, 5}, msgs[2].SourcePages)
	assert.False(t, c.AwaitingResponse())

	// history snapshot excludes the question being asked
	require.Len(t, ft.lastHistory, 1)
	assert.Equal(t, "assistant", ft.lastHistory[0].Role)
}

func TestSendEmptyQuestionNoOp(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestController(ft)
	defer c.Close()

	err := c.Send(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, 1, c.Store().Len())
	assert.Zero(t, ft.calls())
	assert.False(t, c.AwaitingResponse())
}

func TestSendWithoutSession(t *testing.T) {
	c := NewController(&fakeTransport{}, NewStore())
	defer c.Close()

	assert.ErrorIs(t, c.Send(context.Background(), "hello"), ErrNoSession)
	assert.False(t, c.AwaitingResponse())
}

func TestSendWhileAwaitingIsNoOp(t *testing.T) {
	ft := &fakeTransport{block: make(chan struct{})}
	c := newTestController(ft)
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Send(context.Background(), "first") }()

	require.Eventually(t, c.AwaitingResponse, time.Second, time.Millisecond)
	lenBefore := c.Store().Len()

	err := c.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, lenBefore, c.Store().Len())
	assert.True(t, c.AwaitingResponse())

	close(ft.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, ft.calls())
	assert.Equal(t, 3, c.Store().Len())
	assert.False(t, c.AwaitingResponse())
}

func TestSendFailureRecoveredInline(t *testing.T) {
	ft := &fakeTransport{
		chatFn: func(string, string, []api.HistoryEntry) (*api.ChatResponse, error) {
			return nil, &api.Error{StatusCode: 503, Detail: "model unavailable"}
		},
	}
	c := newTestController(ft)
	defer c.Close()

	require.NoError(t, c.Send(context.Background(), "???"))

	msgs := c.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Contains(t, msgs[2].Content, "model unavailable")
	assert.Empty(t, msgs[2].SourcePages)
	assert.NotNil(t, msgs[2].SourcePages)
	assert.False(t, c.AwaitingResponse())
}

func TestSendNetworkFailureGenericReply(t *testing.T) {
	ft := &fakeTransport{
		chatFn: func(string, string, []api.HistoryEntry) (*api.ChatResponse, error) {
			return nil, fmt.Errorf("dial tcp: connection refused")
		},
	}
	c := newTestController(ft)
	defer c.Close()

	require.NoError(t, c.Send(context.Background(), "hello"))

	msgs := c.Store().Messages()
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[2].Content, "try asking again")
}

func TestSendNilSourcePagesStoredEmpty(t *testing.T) {
	ft := &fakeTransport{
		chatFn: func(string, string, []api.HistoryEntry) (*api.ChatResponse, error) {
			return &api.ChatResponse{Answer: "no citations"}, nil
		},
	}
	c := newTestController(ft)
	defer c.Close()

	require.NoError(t, c.Send(context.Background(), "q"))

	msgs := c.Store().Messages()
	assert.NotNil(t, msgs[2].SourcePages)
	assert.Empty(t, msgs[2].SourcePages)
}

func TestTranscriptPatternOverTurns(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestController(ft)
	defer c.Close()

	const turns = 3
	for i := 0; i < turns; i++ {
		require.NoError(t, c.Send(context.Background(), fmt.Sprintf("question %d", i)))
	}

	msgs := c.Store().Messages()
	require.Len(t, msgs, 1+2*turns)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, RoleUser, msgs[i].Role)
		assert.Equal(t, RoleAssistant, msgs[i+1].Role)
	}
}

func TestResetDeletesSessionOnce(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestController(ft)
	defer c.Close()

	c.Reset()
	c.Reset() // no session left, must be a no-op

	require.Eventually(t, func() bool {
		return len(ft.deletedIDs()) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"s1"}, ft.deletedIDs())
	assert.Nil(t, c.Store().Session())
}

func TestResetSwallowsDeleteFailure(t *testing.T) {
	ft := &fakeTransport{deleteErr: fmt.Errorf("backend down")}
	c := newTestController(ft)
	defer c.Close()

	c.Reset()

	require.Eventually(t, func() bool {
		return len(ft.deletedIDs()) == 1
	}, time.Second, time.Millisecond)
	assert.Nil(t, c.Store().Session())
}

func TestStaleReplyDroppedAfterReset(t *testing.T) {
	ft := &fakeTransport{block: make(chan struct{})}
	c := newTestController(ft)
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Send(context.Background(), "slow question") }()
	require.Eventually(t, c.AwaitingResponse, time.Second, time.Millisecond)

	c.Reset()
	close(ft.block)
	require.NoError(t, <-done)

	// the late answer belongs to a closed session and is discarded
	assert.Zero(t, c.Store().Len())
	assert.False(t, c.AwaitingResponse())
}
