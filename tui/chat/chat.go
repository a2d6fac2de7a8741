package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/api"
	chatctl "docchat/chat"
	"docchat/pubsub"
	"docchat/tui/component"
	"docchat/upload"
)

// screen 界面所处的阶段，与上传状态机对应
type screen int

const (
	screenPicker screen = iota // 选择文件
	screenUpload               // 上传/索引中，或展示失败原因
	screenChat                 // 问答
)

// Model 根模型：持有各组件并在三个界面之间切换。
// 上传与对话的进展都通过 pubsub 事件到达，Model 不直接调用后端。
type Model struct {
	picker component.PickerModel
	list   component.ListModel
	edit   component.EditModel
	status component.StatusModel

	uploadCtl *upload.Controller
	chatCtl   *chatctl.Controller
	uploadSub <-chan pubsub.Event[upload.Event]
	chatSub   <-chan pubsub.Event[chatctl.Message]
	ctx       context.Context

	screen      screen
	uploadState upload.State
	attempt     string // 当前关注的上传尝试，迟到的事件据此丢弃
	session     *api.Session
	notice      string
	width       int
	height      int

	headerStyle lipgloss.Style
	errorStyle  lipgloss.Style
	helpStyle   lipgloss.Style
	noticeStyle lipgloss.Style
}

// InitialModel 创建根模型并订阅两个事件 Broker
func InitialModel(uploadCtl *upload.Controller, chatCtl *chatctl.Controller) Model {
	ctx := context.Background()
	return Model{
		picker:    component.NewPickerModel(),
		list:      component.NewListModel(),
		edit:      component.NewEditModel(),
		status:    component.NewStatusModel(),
		uploadCtl: uploadCtl,
		chatCtl:   chatCtl,
		uploadSub: uploadCtl.Broker().Subscribe(ctx),
		chatSub:   chatCtl.Broker().Subscribe(ctx),
		ctx:       ctx,

		headerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Bold(true),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
		helpStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
		noticeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.picker.Init(),
		m.edit.Init(),
		m.status.Init(),
		m.waitForUploadEvent(),
		m.waitForChatEvent(),
	)
}

// waitForUploadEvent 等待下一条上传事件
func (m Model) waitForUploadEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.uploadSub
		if !ok {
			return nil
		}
		return ev
	}
}

// waitForChatEvent 等待下一条对话事件
func (m Model) waitForChatEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.chatSub
		if !ok {
			return nil
		}
		return ev
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case component.FileSelectedMsg:
		return m.handleFileSelected(msg)

	case component.EditorSubmitMsg:
		return m.handleSubmit(msg)

	case pubsub.Event[upload.Event]:
		return m.handleUploadEvent(msg)

	case pubsub.Event[chatctl.Message]:
		return m.handleChatEvent(msg)
	}

	return m.updateComponents(msg)
}

// handleResize 把窗口尺寸分发给各组件
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	m.picker.SetHeight(msg.Height - 6)
	m.edit.SetWidth(msg.Width - 2)
	// 消息记录占据输入框和状态栏之外的空间
	m.list.SetSize(msg.Width-2, msg.Height-8)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.chatCtl.Reset()
		return m, tea.Quit

	case "esc":
		m.chatCtl.Reset()
		return m, tea.Quit

	case "enter":
		if m.screen == screenUpload && m.uploadState.Phase == upload.PhaseError {
			// 失败后回到选择器重试
			m.screen = screenPicker
			m.picker.SetHint(m.uploadState.ErrorMessage)
			return m, nil
		}
		if m.screen == screenChat && m.chatCtl.AwaitingResponse() {
			// 等待回答时吞掉回车，已输入的文字留在输入框里
			return m, nil
		}

	case "ctrl+r":
		if m.screen == screenChat {
			return m.handleReset()
		}

	case "ctrl+y":
		if m.screen == screenChat {
			return m.handleCopy()
		}
	}

	return m.updateComponents(msg)
}

// handleFileSelected 把选中的文件交给上传控制器
func (m Model) handleFileSelected(msg component.FileSelectedMsg) (tea.Model, tea.Cmd) {
	m.screen = screenUpload
	m.uploadState = upload.State{Phase: upload.PhaseUploading}
	m.notice = ""
	cmd := m.status.Start("Uploading...")

	go func() {
		// 结果通过事件送达，错误已反映在 FailedEvent 里
		_, _ = m.uploadCtl.Submit(m.ctx, msg.Path)
	}()
	return m, cmd
}

// handleSubmit 把问题交给对话控制器
func (m Model) handleSubmit(msg component.EditorSubmitMsg) (tea.Model, tea.Cmd) {
	if m.screen != screenChat || m.chatCtl.AwaitingResponse() {
		return m, nil
	}
	m.notice = ""
	cmd := m.status.Start("Thinking...")

	go func() {
		_ = m.chatCtl.Send(m.ctx, msg.Value)
	}()
	return m, cmd
}

// handleUploadEvent 消费一条上传事件并重新武装订阅
func (m Model) handleUploadEvent(ev pubsub.Event[upload.Event]) (tea.Model, tea.Cmd) {
	rearm := m.waitForUploadEvent()

	// 采纳第一条带 Attempt 的事件，之后丢弃其他尝试迟到的事件
	if ev.Payload.Attempt != "" {
		if m.attempt == "" {
			m.attempt = ev.Payload.Attempt
		} else if ev.Payload.Attempt != m.attempt {
			return m, rearm
		}
	}

	switch ev.Type {
	case pubsub.ProgressEvent:
		m.uploadState.Phase = upload.PhaseUploading
		m.uploadState.ProgressPercent = ev.Payload.Percent
		m.uploadState.FileName = ev.Payload.FileName

	case pubsub.UpdatedEvent:
		m.uploadState.Phase = upload.PhaseProcessing
		m.uploadState.ProgressPercent = 100
		m.status.SetText("Indexing document...")

	case pubsub.FinishedEvent:
		m.attempt = ""
		m.session = ev.Payload.Session
		m.chatCtl.Store().SetSession(ev.Payload.Session)
		m.list.SetMessages(m.chatCtl.Store().Messages())
		m.screen = screenChat
		m.status.Stop("")
		return m, tea.Batch(rearm, m.edit.Focus())

	case pubsub.FailedEvent:
		m.attempt = ""
		m.uploadState = upload.State{
			Phase:        upload.PhaseError,
			ErrorMessage: ev.Payload.Err,
			FileName:     ev.Payload.FileName,
		}
		m.screen = screenUpload
		m.status.Stop("")
	}
	return m, rearm
}

// handleChatEvent 消费一条对话事件并重新武装订阅
func (m Model) handleChatEvent(ev pubsub.Event[chatctl.Message]) (tea.Model, tea.Cmd) {
	rearm := m.waitForChatEvent()

	switch ev.Type {
	case pubsub.CreatedEvent:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(ev)
		return m, tea.Batch(rearm, cmd)

	case pubsub.FinishedEvent:
		m.status.Stop("")
	}
	return m, rearm
}

// handleReset 结束当前会话并回到文件选择
func (m Model) handleReset() (tea.Model, tea.Cmd) {
	m.chatCtl.Reset()
	m.session = nil
	m.list.Clear()
	m.screen = screenPicker
	m.status.Stop("")
	m.notice = ""
	m.picker.SetHint("")
	return m, nil
}

// handleCopy 把最近一条回答复制到剪贴板
func (m Model) handleCopy() (tea.Model, tea.Cmd) {
	msgs := m.chatCtl.Store().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chatctl.RoleAssistant {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				m.notice = "Copy failed: clipboard unavailable."
			} else {
				m.notice = "Answer copied."
			}
			return m, nil
		}
	}
	return m, nil
}

// updateComponents 把消息透传给当前界面的组件
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.status, cmd = m.status.Update(msg)
	cmds = append(cmds, cmd)

	switch m.screen {
	case screenPicker:
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	case screenChat:
		m.edit, cmd = m.edit.Update(msg)
		cmds = append(cmds, cmd)
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	switch m.screen {
	case screenPicker:
		return m.picker.View()
	case screenUpload:
		return m.uploadView()
	default:
		return m.chatView()
	}
}

// uploadView 上传/索引/失败界面
func (m Model) uploadView() string {
	var sections []string
	sections = append(sections, m.headerStyle.Render("docchat"))

	switch m.uploadState.Phase {
	case upload.PhaseError:
		sections = append(sections,
			m.errorStyle.Render(m.uploadState.ErrorMessage),
			m.helpStyle.Render("enter: choose another file • esc: quit"),
		)
	case upload.PhaseProcessing:
		sections = append(sections,
			m.status.View(),
			m.helpStyle.Render(fmt.Sprintf("%s uploaded, waiting for the index to build...", m.uploadState.FileName)),
		)
	default:
		sections = append(sections,
			m.status.View(),
			renderProgressBar(m.uploadState.ProgressPercent, m.barWidth()),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// chatView 问答界面：消息记录 + 状态栏 + 输入框
func (m Model) chatView() string {
	header := m.headerStyle.Render("docchat")
	if m.session != nil {
		header += m.helpStyle.Render(fmt.Sprintf("  %s · %d pages", m.session.Filename, m.session.TotalPages))
	}

	statusLine := m.status.View()
	if m.notice != "" {
		statusLine += "  " + m.noticeStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.list.View(),
		statusLine,
		m.edit.View(),
		m.helpStyle.Render("enter: send • ctrl+y: copy answer • ctrl+r: new document • ctrl+c: quit"),
	)
}

func (m Model) barWidth() int {
	if m.width > 40 {
		return m.width - 20
	}
	return 20
}

// renderProgressBar 渲染一条定宽文本进度条
func renderProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := width * percent / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, percent)
}
