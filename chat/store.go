package chat

import (
	"fmt"
	"sync"

	"docchat/api"
)

// Store 持有当前唯一活跃的 Session 及其按对话顺序追加的消息记录。
// 只有 SetSession、Append 和 Reset 会修改内部状态，
// 其余组件一律通过副本读取。
type Store struct {
	mu      sync.RWMutex
	session *api.Session
	msgs    []Message
}

// NewStore 创建一个空的会话存储
func NewStore() *Store {
	return &Store{}
}

// SetSession 绑定一次成功上传产生的 Session，清空旧记录，
// 并在记录开头合成一条本地欢迎消息（不经过后端）。
func (s *Store) SetSession(session *api.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.msgs = s.msgs[:0]
	s.msgs = append(s.msgs, Message{
		Role: RoleAssistant,
		Content: fmt.Sprintf(
			"I've finished reading **%s** — %d pages indexed into %d searchable chunks. Ask me anything about it!",
			session.Filename, session.TotalPages, session.TotalChunks,
		),
		SourcePages: []int{},
	})
}

// Session 返回当前活跃的 Session，没有时返回 nil
func (s *Store) Session() *api.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Append 追加一条消息
func (s *Store) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

// Messages 返回全部消息的副本，避免外部修改
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Message, len(s.msgs))
	copy(result, s.msgs)
	return result
}

// Len 返回当前消息条数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// History 把当前记录快照为回传后端的历史：只保留 role 和 content，
// 引用页码不属于对话状态。本地合成的欢迎语同样作为 assistant 轮回传。
func (s *Store) History() []api.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]api.HistoryEntry, 0, len(s.msgs))
	for _, msg := range s.msgs {
		history = append(history, api.HistoryEntry{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history
}

// Reset 清空 Session 和消息记录，返回被关闭会话的 ID 供调用方
// 做尽力而为的后端清理。没有活跃会话时返回空串，重复调用安全。
func (s *Store) Reset() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ""
	}
	closed := s.session.SessionID
	s.session = nil
	s.msgs = nil
	return closed
}
