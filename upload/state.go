package upload

import "docchat/api"

// Phase 上传流程所处的阶段。成功是瞬态的：后端返回 Session 后
// 状态机回到 idle，UploadState 随之丢弃。
type Phase int

const (
	// PhaseIdle 等待选择文件
	PhaseIdle Phase = iota
	// PhaseUploading 字节传输中，进度百分比有效
	PhaseUploading
	// PhaseProcessing 传输完成，后端索引中，没有可观测的进度
	PhaseProcessing
	// PhaseError 失败终态，重新提交文件即可离开
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseProcessing:
		return "processing"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State 一次上传尝试的瞬时状态
type State struct {
	Phase           Phase
	ProgressPercent int    // 仅 uploading 阶段有意义，0-100
	ErrorMessage    string // 仅 error 阶段设置
	FileName        string // 最近一次尝试的文件名，error 阶段保留用于提示
}

// Event 上传生命周期事件。Attempt 标识一次提交，
// 订阅方用它忽略已被放弃的尝试迟到的事件。
type Event struct {
	Attempt  string
	Phase    Phase
	Percent  int
	FileName string
	Session  *api.Session // 仅 FinishedEvent 携带
	Err      string       // 仅 FailedEvent 携带
}
