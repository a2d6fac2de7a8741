package pubsub

import (
	"context"
	"testing"
	"time"
)

// TestBrokerFlow 验证基本的订阅和发布流程
func TestBrokerFlow(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := broker.Subscribe(ctx)

	// 异步模拟订阅者（TUI 事件循环）处理逻辑
	received := make(chan int, 1)
	go func() {
		for event := range events {
			if event.Type == ProgressEvent {
				received <- event.Payload
			}
		}
	}()

	broker.Publish(ProgressEvent, 42)

	select {
	case pct := <-received:
		if pct != 42 {
			t.Errorf("期望得到 42, 实际得到 %d", pct)
		}
	case <-time.After(1 * time.Second):
		t.Error("接收事件超时")
	}
}

// TestAutoUnsubscribe 验证基于 Context 的自动退订机制
func TestAutoUnsubscribe(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())

	_ = broker.Subscribe(ctx)
	if broker.SubscriberCount() != 1 {
		t.Errorf("期望订阅者数量为 1, 实际为 %d", broker.SubscriberCount())
	}

	cancel()

	// 给一点点时间让后台清理协程运行
	time.Sleep(10 * time.Millisecond)

	if broker.SubscriberCount() != 0 {
		t.Errorf("Context 取消后订阅者未自动清理，当前数量: %d", broker.SubscriberCount())
	}
}

// TestNonBlockingPublish 验证慢订阅者不会阻塞发布方：
// 上传进度事件的产生速度可能远超 TUI 的消费速度
func TestNonBlockingPublish(t *testing.T) {
	broker := NewBrokerWithBuffer[int](4)
	defer broker.Shutdown()

	// 订阅但从不消费
	_ = broker.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			broker.Publish(ProgressEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Publish 被慢订阅者阻塞")
	}
}

// TestBrokerShutdown 验证关闭后订阅通道随之关闭且重复关闭安全
func TestBrokerShutdown(t *testing.T) {
	broker := NewBroker[string]()

	events := broker.Subscribe(context.Background())

	broker.Shutdown()
	broker.Shutdown() // 幂等

	select {
	case _, ok := <-events:
		if ok {
			t.Error("Broker 关闭后，订阅通道仍未关闭")
		}
	case <-time.After(1 * time.Second):
		t.Error("Broker 关闭后，订阅通道关闭超时")
	}

	// 关闭后订阅应返回已关闭的通道
	ch := broker.Subscribe(context.Background())
	if _, ok := <-ch; ok {
		t.Error("关闭后的 Subscribe 应返回已关闭的通道")
	}
}
