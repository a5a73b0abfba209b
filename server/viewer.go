package server

import "webpong/pong"

// ViewerID 表示观众（浏览器连接）唯一标识
type ViewerID string

// RenderSink 每 Tick 消费一帧快照，不回写任何状态
type RenderSink interface {
	Render(snap pong.Snapshot)
}

// AudioSink 音效提示，发出即忘，播放失败不影响模拟
type AudioSink interface {
	Play(cue pong.Cue)
}

// Viewer 会话中的一个观众：既是渲染端也是音效端
type Viewer interface {
	RenderSink
	AudioSink
	Close()
}
