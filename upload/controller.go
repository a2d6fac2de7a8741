package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"docchat/api"
	"docchat/pubsub"

	"github.com/google/uuid"
)

var (
	// ErrBusy 已有一次上传在途，本次提交被拒绝
	ErrBusy = errors.New("upload: attempt already in flight")
	// ErrInvalidFileType 文件扩展名不是 .pdf，未发起任何网络调用
	ErrInvalidFileType = errors.New("upload: only PDF files are accepted")
)

// Uploader 上传控制器依赖的传输能力
type Uploader interface {
	UploadDocument(ctx context.Context, filename string, r io.Reader, onProgress func(percent int)) (*api.Session, error)
}

// Controller 驱动上传状态机：
//
//	idle ──提交合法文件──> uploading ──传输到 100%──> processing ──后端返回──> (Session, 回到 idle)
//	idle ──提交非法文件──> error
//	uploading / processing ──失败──> error ──重新提交──> uploading
//
// 成功产出的 Session 是唯一向上传递的产物，控制器从不读写会话存储。
type Controller struct {
	uploader Uploader
	broker   *pubsub.Broker[Event]

	mu      sync.Mutex
	state   State
	attempt string // 当前在途尝试 ID，空表示无
}

// NewController 创建上传控制器及其事件 Broker
func NewController(uploader Uploader) *Controller {
	return &Controller{
		uploader: uploader,
		broker:   pubsub.NewBroker[Event](),
	}
}

// Broker 获取上传事件 Broker，TUI 订阅它以刷新进度
func (c *Controller) Broker() *pubsub.Broker[Event] {
	return c.broker
}

// State 返回当前状态的副本
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close 关闭事件 Broker
func (c *Controller) Close() {
	c.broker.Shutdown()
}

// Submit 校验并上传一个文件，阻塞到后端完成索引。
// 扩展名校验失败立即进入 error 阶段，不发起网络调用；
// error 阶段不粘滞，再次提交直接进入 uploading。
func (c *Controller) Submit(ctx context.Context, path string) (*api.Session, error) {
	name := filepath.Base(path)

	c.mu.Lock()
	if c.attempt != "" {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		c.state = State{
			Phase:        PhaseError,
			ErrorMessage: "Only PDF files are supported.",
			FileName:     name,
		}
		c.mu.Unlock()
		c.broker.Publish(pubsub.FailedEvent, Event{
			Phase:    PhaseError,
			FileName: name,
			Err:      "Only PDF files are supported.",
		})
		return nil, ErrInvalidFileType
	}

	id := uuid.NewString()
	c.attempt = id
	c.state = State{Phase: PhaseUploading, FileName: name}
	c.mu.Unlock()

	c.broker.Publish(pubsub.ProgressEvent, Event{
		Attempt:  id,
		Phase:    PhaseUploading,
		FileName: name,
	})

	f, err := os.Open(path)
	if err != nil {
		c.fail(id, name, fmt.Sprintf("Could not read %s.", name))
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	session, err := c.uploader.UploadDocument(ctx, name, f, func(pct int) {
		c.onProgress(id, name, pct)
	})
	if err != nil {
		c.fail(id, name, failureDetail(err))
		return nil, err
	}

	c.finish(id, session)
	return session, nil
}

// onProgress 处理一次字节进度回调。100% 意味着传输结束、
// 后端开始索引，此后不再有可观测的进度。
func (c *Controller) onProgress(id, name string, pct int) {
	c.mu.Lock()
	if c.attempt != id {
		c.mu.Unlock()
		return
	}
	// 传输层保证单调，这里再兜一次底
	if c.state.Phase != PhaseUploading || pct <= c.state.ProgressPercent {
		c.mu.Unlock()
		return
	}
	c.state.ProgressPercent = pct
	if pct >= 100 {
		c.state.Phase = PhaseProcessing
	}
	phase := c.state.Phase
	c.mu.Unlock()

	if phase == PhaseProcessing {
		c.broker.Publish(pubsub.UpdatedEvent, Event{
			Attempt:  id,
			Phase:    PhaseProcessing,
			Percent:  100,
			FileName: name,
		})
		return
	}
	c.broker.Publish(pubsub.ProgressEvent, Event{
		Attempt:  id,
		Phase:    PhaseUploading,
		Percent:  pct,
		FileName: name,
	})
}

// finish 成功终态：发出 Session 并把状态机放回 idle
func (c *Controller) finish(id string, session *api.Session) {
	c.mu.Lock()
	if c.attempt != id {
		c.mu.Unlock()
		return
	}
	c.attempt = ""
	c.state = State{}
	c.mu.Unlock()

	c.broker.Publish(pubsub.FinishedEvent, Event{
		Attempt: id,
		Phase:   PhaseIdle,
		Session: session,
	})
}

// fail 失败终态：保留文件名供提示，等待用户重新选择文件
func (c *Controller) fail(id, name, msg string) {
	c.mu.Lock()
	if c.attempt != id {
		c.mu.Unlock()
		return
	}
	c.attempt = ""
	c.state = State{
		Phase:        PhaseError,
		ErrorMessage: msg,
		FileName:     name,
	}
	c.mu.Unlock()

	c.broker.Publish(pubsub.FailedEvent, Event{
		Attempt:  id,
		Phase:    PhaseError,
		FileName: name,
		Err:      msg,
	})
}

// failureDetail 优先展示后端的 detail，否则给出通用提示
func failureDetail(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Upload failed. Please check the backend and try again."
}
