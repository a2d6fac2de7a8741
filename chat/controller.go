package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"docchat/api"
	"docchat/pubsub"
)

var (
	// ErrEmptyQuestion 输入去除空白后为空，不产生任何状态变化
	ErrEmptyQuestion = errors.New("chat: empty question")
	// ErrBusy 上一轮回答尚未返回，本次发送被拒绝（不排队）
	ErrBusy = errors.New("chat: previous turn still in flight")
	// ErrNoSession 当前没有活跃的文档会话
	ErrNoSession = errors.New("chat: no active session")
)

// Transport 对话控制器依赖的后端调用能力
type Transport interface {
	Chat(ctx context.Context, sessionID, question string, history []api.HistoryEntry) (*api.ChatResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Controller 驱动一次多轮对话：接收用户提问、组装历史、调用后端，
// 并把结果追加进 Store。同一时刻最多一轮在途，后端失败被恢复为
// 一条内联的 assistant 错误回复，对话本身保持可用。
type Controller struct {
	transport Transport
	store     *Store
	broker    *pubsub.Broker[Message]
	awaiting  atomic.Bool
}

// NewController 创建对话控制器及其事件 Broker
func NewController(transport Transport, store *Store) *Controller {
	return &Controller{
		transport: transport,
		store:     store,
		broker:    pubsub.NewBroker[Message](),
	}
}

// Broker 获取消息事件 Broker，TUI 订阅它以刷新记录
func (c *Controller) Broker() *pubsub.Broker[Message] {
	return c.broker
}

// Store 获取会话存储
func (c *Controller) Store() *Store {
	return c.store
}

// AwaitingResponse 返回是否有一轮回答在途
func (c *Controller) AwaitingResponse() bool {
	return c.awaiting.Load()
}

// Send 处理一次用户提问。流程：
//  1. 去除空白，为空则直接拒绝；
//  2. 在途保护：已有一轮在等待时本次为空操作；
//  3. 先快照历史，再乐观地追加用户消息（不等网络返回）；
//  4. 调用后端；成功则追加带引用页码的回答，
//     失败则追加一条携带后端 detail 的错误回复；
//  5. 无论哪条路径退出，在途标记都会被清除。
//
// 会话在请求在途期间被重置时，迟到的结果会因 Session 身份
// 不再匹配而被丢弃。
func (c *Controller) Send(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	if !c.awaiting.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.awaiting.Store(false)

	session := c.store.Session()
	if session == nil {
		return ErrNoSession
	}
	sessionID := session.SessionID

	// 历史不包含本次提问本身
	history := c.store.History()

	userMsg := Message{Role: RoleUser, Content: question}
	c.store.Append(userMsg)
	c.broker.Publish(pubsub.CreatedEvent, userMsg)

	resp, err := c.transport.Chat(ctx, sessionID, question, history)

	// 在途期间会话被重置：对结果不再感兴趣，直接丢弃
	if current := c.store.Session(); current == nil || current.SessionID != sessionID {
		return nil
	}

	var reply Message
	if err != nil {
		reply = Message{
			Role:        RoleAssistant,
			Content:     errorReply(err),
			SourcePages: []int{},
		}
	} else {
		pages := resp.SourcePages
		if pages == nil {
			pages = []int{}
		}
		reply = Message{
			Role:        RoleAssistant,
			Content:     resp.Answer,
			SourcePages: pages,
		}
	}

	c.store.Append(reply)
	c.broker.Publish(pubsub.CreatedEvent, reply)
	c.broker.Publish(pubsub.FinishedEvent, reply)
	return nil
}

// Reset 关闭当前会话：清空存储并在后台尽力删除后端会话，
// 删除失败被吞掉——客户端视角会话已经结束。重复调用安全。
func (c *Controller) Reset() {
	closed := c.store.Reset()
	if closed == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.transport.DeleteSession(ctx, closed)
	}()
}

// Close 关闭事件 Broker
func (c *Controller) Close() {
	c.broker.Shutdown()
}

// errorReply 把一次后端失败转成用户可读的内联回复，
// 后端提供 detail 时带上
func errorReply(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return fmt.Sprintf("Sorry — I couldn't answer that (%s). Please try asking again.", apiErr.Detail)
	}
	return "Sorry — I couldn't reach the backend just now. Please try asking again."
}
