package chat

// Role 消息的发言方
type Role string

const (
	// RoleUser 用户提问
	RoleUser Role = "user"
	// RoleAssistant 助手回答（含本地合成的欢迎语和内联错误回复）
	RoleAssistant Role = "assistant"
)

// Message 对话记录中的一条消息。
// Content 为纯文本，assistant 消息中可能包含轻量级 Markdown 标记，
// 只在渲染时解释。SourcePages 是后端为该回答引用的页码，
// 仅 assistant 消息携带，可能为空。
type Message struct {
	Role        Role
	Content     string
	SourcePages []int
}
