// Package xmetrics actor运行指标, 默认空实现, 可替换为Prometheus
package xmetrics

import "time"

type ActorMetrics interface {
	MessageProcessed(actor, msgType string, success bool)
	MessageDropped(actor, msgType string)
	MessageDuration(actor, msgType string, d time.Duration)
	HandlerPanic(actor, msgType string)
	MailboxDepth(actor string, depth int)
	RouterDispatch(pool string, worker int)
}

type nopMetrics struct{}

func (nopMetrics) MessageProcessed(string, string, bool)         {}
func (nopMetrics) MessageDropped(string, string)                 {}
func (nopMetrics) MessageDuration(string, string, time.Duration) {}
func (nopMetrics) HandlerPanic(string, string)                   {}
func (nopMetrics) MailboxDepth(string, int)                      {}
func (nopMetrics) RouterDispatch(string, int)                    {}

func Nop() ActorMetrics { return nopMetrics{} }
