package monitor

import (
	"time"

	"trade-planner/internal/cost"
)

// EventType 表示监控事件类型。
type EventType string

const (
	EventPlan  EventType = "plan"
	EventQuote EventType = "quote"
	EventError EventType = "error"
)

// Event 封装通用监控事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSummary 为写入日志的请求快照，数值以十进制字符串保存。
type RequestSummary struct {
	Market         string `json:"market"`
	Side           string `json:"side"`
	Shares         string `json:"shares"`
	LimitPrice     string `json:"limit_price,omitempty"`
	TakerFee       string `json:"taker_fee"`
	MakerFee       string `json:"maker_fee"`
	Trader         string `json:"trader"`
	PositionShares string `json:"position_shares"`
	OutcomeID      string `json:"outcome_id"`
}

// PlanPayload 记录一次规划的输入与输出。
type PlanPayload struct {
	Request RequestSummary `json:"request"`
	Actions []cost.Action  `json:"actions"`
}

// QuotePayload 记录双边报价。
type QuotePayload struct {
	Request RequestSummary `json:"request"`
	Buy     []cost.Action  `json:"buy"`
	Sell    []cost.Action  `json:"sell"`
}

// ErrorPayload 记录异常。
type ErrorPayload struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}
