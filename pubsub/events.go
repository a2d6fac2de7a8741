package pubsub

import "context"

const (
	// ProgressEvent 上传字节进度更新事件
	ProgressEvent EventType = "progress"
	// CreatedEvent 新资源产生事件（例如新的对话消息）
	CreatedEvent EventType = "created"
	// UpdatedEvent 资源状态变化事件（例如上传进入索引阶段）
	UpdatedEvent EventType = "updated"
	// FinishedEvent 流程正常结束事件（进度流的完成信号）
	FinishedEvent EventType = "finished"
	// FailedEvent 流程异常终止事件（进度流的错误终止信号）
	FailedEvent EventType = "failed"
)

// Subscriber 订阅者接口，定义了获取事件通道的方法
type Subscriber[T any] interface {
	// Subscribe 返回一个只读的事件通道，并在 context 结束时自动关闭
	Subscribe(context.Context) <-chan Event[T]
}

type (
	// EventType 标识事件的类型
	EventType string

	// Event 代表一次状态变化：上传进度、对话消息或终止信号
	Event[T any] struct {
		Type    EventType // 事件类型
		Payload T         // 事件携带的具体数据载荷
	}

	// Publisher 发布者接口，定义了发布事件的方法
	Publisher[T any] interface {
		// Publish 将指定类型和载荷的事件发布给所有订阅者
		Publish(EventType, T)
	}
)
