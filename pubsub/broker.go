package pubsub

import (
	"context"
	"sync"
)

const defaultBufferSize = 64

// Broker 实现了基于内存的发布者/订阅者模型。
// 上传控制器和对话控制器通过它把进度与消息事件推送给 TUI，
// 使用泛型 T 来保证事件数据载荷的类型安全。
type Broker[T any] struct {
	subs    map[chan Event[T]]struct{} // 活跃订阅者的集合，键为事件通道
	mu      sync.RWMutex               // 读写锁，保护 subs 映射的并发访问
	done    chan struct{}              // 关闭信号通道，用于停止所有操作
	bufSize int                        // 每个订阅者通道的缓冲区大小
}

// NewBroker 创建并返回一个新的具有默认缓冲区的 Broker。
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer 创建一个带有自定义通道缓冲区大小的 Broker。
func NewBrokerWithBuffer[T any](bufSize int) *Broker[T] {
	if bufSize < 1 {
		bufSize = 1
	}
	return &Broker[T]{
		subs:    make(map[chan Event[T]]struct{}),
		done:    make(chan struct{}),
		bufSize: bufSize,
	}
}

// Shutdown 优雅地关闭 Broker，停止接收新事件并关闭所有订阅通道。
// 重复调用是安全的。
func (b *Broker[T]) Shutdown() {
	select {
	case <-b.done: // 已经关闭，直接返回
		return
	default:
		close(b.done)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

// Subscribe 注册一个订阅者并返回一个接收事件的通道。
// 该通道会在 ctx.Done() 信号触发或 Broker 关闭时自动注销并关闭。
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	// 如果 Broker 已关闭，返回一个立即关闭的通道
	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	sub := make(chan Event[T], b.bufSize)
	b.subs[sub] = struct{}{}

	// 后台协程监听上下文状态以便自动清理
	go func() {
		<-ctx.Done()

		b.mu.Lock()
		defer b.mu.Unlock()

		// Broker 已整体关闭时通道已被回收，避免重复关闭
		select {
		case <-b.done:
			return
		default:
		}

		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub)
		}
	}()

	return sub
}

// SubscriberCount 返回当前活跃的订阅者数量。
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish 将一个事件分发给所有活跃的订阅者。
// 该操作是非阻塞的：如果订阅者的缓冲区已满，该订阅者将跳过当前事件。
func (b *Broker[T]) Publish(t EventType, payload T) {
	b.mu.RLock()
	// 如果 Broker 已关闭，直接放弃分发
	select {
	case <-b.done:
		b.mu.RUnlock()
		return
	default:
	}

	// 复制一份订阅者切片，以缩短持有读锁的时间
	subscribers := make([]chan Event[T], 0, len(b.subs))
	for sub := range b.subs {
		subscribers = append(subscribers, sub)
	}
	b.mu.RUnlock()

	event := Event[T]{Type: t, Payload: payload}

	for _, sub := range subscribers {
		select {
		case sub <- event:
		default:
			// 通道已满，为了不阻塞发布方直接丢弃该订阅者的这条事件
		}
	}
}
