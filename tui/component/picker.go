package component

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FileSelectedMsg 用户在选择器里确认了一个文件
type FileSelectedMsg struct {
	Path string
}

// PickerModel PDF 文件选择组件。只允许 .pdf 扩展名，
// 选中其他类型的文件会在本地给出提示。
type PickerModel struct {
	picker filepicker.Model
	hint   string
	styles *PickerStyles
}

// PickerStyles 选择器样式配置
type PickerStyles struct {
	Title lipgloss.Style
	Hint  lipgloss.Style
	Help  lipgloss.Style
}

// DefaultPickerStyles 返回默认选择器样式
func DefaultPickerStyles() *PickerStyles {
	return &PickerStyles{
		Title: lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Bold(true),
		Hint:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	}
}

// NewPickerModel 创建文件选择组件，起始目录为当前工作目录
func NewPickerModel() PickerModel {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf"}
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	return PickerModel{
		picker: fp,
		styles: DefaultPickerStyles(),
	}
}

func (m PickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.hint = ""
		return m, tea.Batch(cmd, func() tea.Msg {
			return FileSelectedMsg{Path: path}
		})
	}

	// 选中被禁用的文件类型，本地提示即可，不需要发请求
	if didSelect, _ := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.hint = "Only PDF files are supported."
	}
	return m, cmd
}

func (m PickerModel) View() string {
	var sections []string
	sections = append(sections, m.styles.Title.Render("Pick a PDF to chat with"))
	if m.hint != "" {
		sections = append(sections, m.styles.Hint.Render(m.hint))
	}
	sections = append(sections, m.picker.View())
	sections = append(sections, m.styles.Help.Render("Large documents take longer to index; a few hundred pages is a comfortable ceiling."))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetHeight 设置选择器可用高度
func (m *PickerModel) SetHeight(height int) {
	if height < 1 {
		height = 1
	}
	m.picker.Height = height
}

// SetHint 设置提示文案（例如上一次上传失败的原因）
func (m *PickerModel) SetHint(hint string) {
	m.hint = hint
}
