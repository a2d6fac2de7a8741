package chat

import (
	"testing"

	"docchat/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSession() *api.Session {
	return &api.Session{
		SessionID:   "s1",
		Filename:    "report.pdf",
		TotalPages:  12,
		TotalChunks: 40,
	}
}

func TestSetSessionSynthesizesGreeting(t *testing.T) {
	s := NewStore()
	s.SetSession(demoSession())

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "report.pdf")
	assert.Contains(t, msgs[0].Content, "12")
	assert.Contains(t, msgs[0].Content, "40")
}

func TestSetSessionReplacesTranscript(t *testing.T) {
	s := NewStore()
	s.SetSession(demoSession())
	s.Append(Message{Role: RoleUser, Content: "old question"})

	s.SetSession(&api.Session{SessionID: "s2", Filename: "other.pdf", TotalPages: 3, TotalChunks: 9})

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "other.pdf")
}

func TestHistoryIncludesGreetingExcludesCitations(t *testing.T) {
	s := NewStore()
	s.SetSession(demoSession())
	s.Append(Message{Role: RoleUser, Content: "q1"})
	s.Append(Message{Role: RoleAssistant, Content: "a1", SourcePages: []int{2, 5}})

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "assistant", history[0].Role)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "a1", history[2].Content)
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetSession(demoSession())

	msgs := s.Messages()
	msgs[0].Content = "mutated"

	assert.NotEqual(t, "mutated", s.Messages()[0].Content)
}

func TestResetIdempotent(t *testing.T) {
	s := NewStore()
	s.SetSession(demoSession())

	assert.Equal(t, "s1", s.Reset())
	assert.Nil(t, s.Session())
	assert.Zero(t, s.Len())

	// second reset is a no-op
	assert.Equal(t, "", s.Reset())
}
