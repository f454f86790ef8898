package xactor

import "gactor/pkg/xruntime"

// Message 投递到inbox的消息
// Sender只用于回复, 接收方不持有其生命周期
// Result非空表示query消息, 最多被赋值一次
type Message struct {
	Payload any
	Sender  Actor
	Result  *xruntime.Future
}

// 系统控制消息: 停止
type StopMessage struct{}

// 停止哨兵, 按指针判断, 用户发送的StopMessage{}按普通payload分发
var stopSentinel = &Message{Payload: StopMessage{}}

func NewMessage(payload any, sender Actor) *Message {
	return &Message{Payload: payload, Sender: sender}
}

func NewQuery(result *xruntime.Future, payload any, sender Actor) *Message {
	return &Message{Payload: payload, Sender: sender, Result: result}
}

func (m *Message) IsQuery() bool {
	return m.Result != nil
}

// 写入结果, future已完成/已取消时忽略
func (m *Message) fulfill(result any, err error) {
	if m.Result == nil {
		return
	}
	if err != nil {
		m.Result.Fail(err)
		return
	}
	m.Result.Resolve(result)
}
