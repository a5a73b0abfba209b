package server

// Input 指针输入（意图），由会话在 Tick 边界解释并驱动玩家球拍
type Input struct {
	ViewerID ViewerID
	Y        float64 // 画布坐标系下的指针 y
	Seq      int64   // 客户端本地序列号，用于丢弃过期输入
}

// 入站消息的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"pointer","y":212.5,"seq":42}
//
//	{"type":"command","command":"pause"}
type InputMessage struct {
	Type    string  `json:"type"`
	Command string  `json:"command,omitempty"`
	Y       float64 `json:"y"`
	Seq     int64   `json:"seq,omitempty"`
}
