package component

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"docchat/chat"
	"docchat/pubsub"
	"docchat/tui/component/renderer"
)

// ListModel 消息记录组件。订阅到的对话事件逐条追加，
// 会话切换时用 SetMessages 整体替换。
type ListModel struct {
	viewport viewport.Model
	renderer *renderer.MessageRenderer
	messages []chat.Message
	width    int
	height   int
	ready    bool
}

// NewListModel 创建消息记录组件
func NewListModel() ListModel {
	return ListModel{
		renderer: renderer.NewMessageRenderer(nil),
		messages: make([]chat.Message, 0),
	}
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pubsub.Event[chat.Message]:
		// 只有新消息事件携带需要展示的内容，完成事件由状态栏消费
		if msg.Type == pubsub.CreatedEvent {
			m.messages = append(m.messages, msg.Payload)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.viewport.View()
}

// SetSize 设置组件尺寸并重绘
func (m *ListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
	m.renderer.SetViewportWidth(width)
	m.refresh()
}

// SetMessages 整体替换消息记录（加载问候语、重置会话）
func (m *ListModel) SetMessages(messages []chat.Message) {
	m.messages = append(m.messages[:0:0], messages...)
	m.refresh()
}

// Clear 清空消息记录
func (m *ListModel) Clear() {
	m.messages = m.messages[:0]
	m.refresh()
}

// Messages 返回当前展示的消息副本
func (m *ListModel) Messages() []chat.Message {
	out := make([]chat.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// refresh 重新渲染内容并滚动到底部
func (m *ListModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderer.RenderMessages(m.messages))
	m.viewport.GotoBottom()
}
