package renderer

import (
	"strings"
	"testing"

	"docchat/chat"

	"github.com/stretchr/testify/assert"
)

func TestFormatSources(t *testing.T) {
	assert.Equal(t, "", FormatSources(nil))
	assert.Equal(t, "Source: p. 4", FormatSources([]int{4}))
	assert.Equal(t, "Sources: p. 2, 5, 7", FormatSources([]int{2, 5, 7}))
}

func TestRenderMessagesEmpty(t *testing.T) {
	r := NewMessageRenderer(nil)
	assert.Equal(t, "No messages yet.", r.RenderMessages(nil))
}

func TestUserMessageKeptVerbatim(t *testing.T) {
	// 用户消息不经过 Markdown 渲染，标记原样保留
	r := NewMessageRenderer(nil)
	out := r.RenderMessage(chat.Message{Role: chat.RoleUser, Content: "what does **section 3** say?"})
	assert.Contains(t, out, "**section 3**")
}

func TestAssistantMessageCarriesSources(t *testing.T) {
	r := NewMessageRenderer(nil)
	out := r.RenderMessage(chat.Message{
		Role:        chat.RoleAssistant,
		Content:     "The warranty lasts two years.",
		SourcePages: []int{2, 5},
	})
	assert.Contains(t, out, "Sources: p. 2, 5")
}

func TestAssistantMessageWithoutSourcesHasNoFooter(t *testing.T) {
	r := NewMessageRenderer(nil)
	out := r.RenderMessage(chat.Message{Role: chat.RoleAssistant, Content: "Hello."})
	assert.NotContains(t, out, "Source")
}

func TestRenderMessagesCacheResetsOnShrink(t *testing.T) {
	r := NewMessageRenderer(nil)
	long := []chat.Message{
		{Role: chat.RoleUser, Content: "first question"},
		{Role: chat.RoleAssistant, Content: "first answer"},
		{Role: chat.RoleUser, Content: "second question"},
	}
	out := r.RenderMessages(long)
	assert.Contains(t, out, "second question")

	// 会话重置后消息变少，缓存必须跟着失效
	short := []chat.Message{{Role: chat.RoleUser, Content: "fresh start"}}
	out = r.RenderMessages(short)
	assert.Contains(t, out, "fresh start")
	assert.False(t, strings.Contains(out, "first question"))
}
