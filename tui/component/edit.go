package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// EditorSubmitMsg 用户按回车提交了一个问题
type EditorSubmitMsg struct {
	Value string
}

// EditModel 问题输入组件。回车提交去掉首尾空白后的内容，
// 空内容不产生任何消息。
type EditModel struct {
	textarea textarea.Model
}

// NewEditModel 创建输入组件
func NewEditModel() EditModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about your document..."
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()
	return EditModel{textarea: ta}
}

func (m EditModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m EditModel) Update(msg tea.Msg) (EditModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		value := strings.TrimSpace(m.textarea.Value())
		if value == "" {
			return m, nil
		}
		m.textarea.Reset()
		return m, func() tea.Msg {
			return EditorSubmitMsg{Value: value}
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m EditModel) View() string {
	return m.textarea.View()
}

// SetWidth 设置输入框宽度
func (m *EditModel) SetWidth(width int) {
	m.textarea.SetWidth(width)
}

// Focus 聚焦输入框
func (m *EditModel) Focus() tea.Cmd {
	return m.textarea.Focus()
}

// Blur 取消聚焦
func (m *EditModel) Blur() {
	m.textarea.Blur()
}
