package component

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusModel 状态栏组件：忙碌时显示 spinner 和当前动作，
// 空闲时显示就绪提示。
type StatusModel struct {
	spinner spinner.Model
	text    string
	busy    bool
	styles  *StatusStyles
}

// StatusStyles 状态栏样式配置
type StatusStyles struct {
	Busy lipgloss.Style
	Idle lipgloss.Style
}

// DefaultStatusStyles 返回默认状态栏样式
func DefaultStatusStyles() *StatusStyles {
	return &StatusStyles{
		Busy: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
		Idle: lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	}
}

// NewStatusModel 创建状态栏组件
func NewStatusModel() StatusModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7"))),
	)
	return StatusModel{
		spinner: sp,
		styles:  DefaultStatusStyles(),
	}
}

func (m StatusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m StatusModel) Update(msg tea.Msg) (StatusModel, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m StatusModel) View() string {
	if m.busy {
		return m.styles.Busy.Render(m.spinner.View() + m.text)
	}
	if m.text != "" {
		return m.styles.Idle.Render(m.text)
	}
	return m.styles.Idle.Render("Ready.")
}

// Start 进入忙碌状态并启动 spinner
func (m *StatusModel) Start(text string) tea.Cmd {
	m.busy = true
	m.text = text
	return m.spinner.Tick
}

// SetText 更新忙碌状态下的文案
func (m *StatusModel) SetText(text string) {
	m.text = text
}

// Stop 回到空闲状态，text 为空时显示就绪提示
func (m *StatusModel) Stop(text string) {
	m.busy = false
	m.text = text
}

// Busy 是否处于忙碌状态
func (m StatusModel) Busy() bool {
	return m.busy
}
