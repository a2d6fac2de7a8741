package renderer

import (
	"fmt"
	"strings"

	"docchat/chat"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// MessageRenderer 消息渲染器。
// assistant 消息按 Markdown 渲染（粗体、项目符号、编号列表等
// 轻量标记只在这里被解释），并在底部追加引用页码。
type MessageRenderer struct {
	markdownRenderer *glamour.TermRenderer
	styles           *MessageStyles
	renderedCache    []string // 已渲染历史消息的缓存
	viewportWidth    int
}

// NewMessageRenderer 创建消息渲染器，styles 为 nil 时使用默认样式
func NewMessageRenderer(styles *MessageStyles) *MessageRenderer {
	if styles == nil {
		styles = DefaultMessageStyles()
	}

	// 初始化 Markdown 渲染器 (Dracula 主题)
	markdownRenderer, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(0), // 禁用自动换行，由外部控制
	)
	return &MessageRenderer{
		markdownRenderer: markdownRenderer,
		styles:           styles,
		renderedCache:    make([]string, 0),
	}
}

// SetViewportWidth 设置视口宽度
func (r *MessageRenderer) SetViewportWidth(width int) {
	r.viewportWidth = width
}

// RenderMessages 渲染整个消息记录。
// 除最后一条外的消息渲染结果会被缓存，列表被清空时缓存随之重置。
func (r *MessageRenderer) RenderMessages(messages []chat.Message) string {
	if len(messages) == 0 {
		return "No messages yet."
	}

	// 检测到回退（例如会话被重置）时重建缓存
	if len(messages) < len(r.renderedCache) {
		r.renderedCache = r.renderedCache[:0]
	}

	for i := len(r.renderedCache); i < len(messages)-1; i++ {
		r.renderedCache = append(r.renderedCache, r.RenderMessage(messages[i]))
	}

	var sb strings.Builder
	for _, cached := range r.renderedCache {
		if cached != "" {
			sb.WriteString(cached)
			sb.WriteString("\n\n")
		}
	}

	// 最后一条不缓存，直接渲染
	if last := r.RenderMessage(messages[len(messages)-1]); last != "" {
		sb.WriteString(last)
	}

	content := sb.String()
	if r.viewportWidth > 0 {
		return lipgloss.NewStyle().Width(r.viewportWidth).Render(content)
	}
	return content
}

// RenderMessage 渲染单条消息
func (r *MessageRenderer) RenderMessage(msg chat.Message) string {
	switch msg.Role {
	case chat.RoleUser:
		return r.renderUserMessage(msg)
	case chat.RoleAssistant:
		return r.renderAssistantMessage(msg)
	}
	return ""
}

// renderUserMessage 渲染用户消息，保持原始文本
func (r *MessageRenderer) renderUserMessage(msg chat.Message) string {
	if msg.Content == "" {
		return ""
	}
	return r.styles.User.Render("You:") + " " + msg.Content
}

// renderAssistantMessage 渲染助手消息（Markdown + 引用页码）
func (r *MessageRenderer) renderAssistantMessage(msg chat.Message) string {
	if msg.Content == "" {
		return ""
	}

	header := r.styles.Assistant.Render("Assistant:")
	body := r.renderMarkdown(msg.Content)

	parts := []string{header + "\n" + body}
	if len(msg.SourcePages) > 0 {
		parts = append(parts, r.styles.Sources.Render(FormatSources(msg.SourcePages)))
	}
	return strings.Join(parts, "\n")
}

// renderMarkdown 渲染 Markdown 内容，失败时退回原始文本
func (r *MessageRenderer) renderMarkdown(content string) string {
	if r.markdownRenderer == nil {
		return content
	}
	rendered, err := r.markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	// 去除首尾空白（glamour 会添加前后换行）
	return strings.TrimSpace(rendered)
}

// FormatSources 把引用页码格式化为展示用的一行
func FormatSources(pages []int) string {
	if len(pages) == 0 {
		return ""
	}
	strs := make([]string, len(pages))
	for i, p := range pages {
		strs[i] = fmt.Sprintf("%d", p)
	}
	label := "Source: p. "
	if len(pages) > 1 {
		label = "Sources: p. "
	}
	return label + strings.Join(strs, ", ")
}
