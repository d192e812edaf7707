package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rushteam/edurec/core"
)

// feedEvent 是外部交互流中一条事件的线格式（JSON）。
// 字段名与数据迁移层保持一致：snake_case 为规范形态。
type feedEvent struct {
	UserID    string  `json:"user_id"`
	CourseID  string  `json:"course_id"`
	EventType string  `json:"event_type"`
	Timestamp int64   `json:"timestamp"` // Unix 秒
	Rating    float64 `json:"rating,omitempty"`
}

// KVInteractionFeed 从 KeyValueStore 读取交互事件流。
// 事件存储为 key 下的 JSON 数组；服务启动前一次性 Load 进内存日志。
// 搭配 RedisStore 即得到 Redis 后端的交互数据源；后端对核心无关紧要。
type KVInteractionFeed struct {
	Store core.Store
	Key   string // 例如 "edurec:interactions"
}

var _ core.InteractionFeed = (*KVInteractionFeed)(nil)

// Load 读取并解析全部事件。key 不存在视为空数据源，不是错误。
func (f *KVInteractionFeed) Load(ctx context.Context) ([]core.Interaction, error) {
	if f.Store == nil || f.Key == "" {
		return nil, nil
	}
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var events []feedEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: malformed interaction feed payload")
	}

	out := make([]core.Interaction, 0, len(events))
	for _, ev := range events {
		in := core.Interaction{
			UserID:   ev.UserID,
			CourseID: ev.CourseID,
			Event:    core.EventType(ev.EventType),
			Rating:   ev.Rating,
		}
		if ev.Timestamp > 0 {
			in.Timestamp = time.Unix(ev.Timestamp, 0)
		}
		// 字段缺失或事件类型未知的记录直接丢弃，不中断加载
		if in.UserID == "" || in.CourseID == "" || !core.ValidEvent(in.Event) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// SliceFeed 是内存切片实现的 InteractionFeed，用于测试与示例。
type SliceFeed []core.Interaction

func (f SliceFeed) Load(ctx context.Context) ([]core.Interaction, error) {
	return f, nil
}

// Replay 把数据源中的事件按顺序写入日志，返回成功写入的条数。
// 非法记录跳过（与矩阵构建的“丢弃而非报错”策略一致）。
func Replay(ctx context.Context, feed core.InteractionFeed, log *InteractionLog) (int, error) {
	events, err := feed.Load(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, in := range events {
		if err := log.Record(ctx, in); err != nil {
			continue
		}
		n++
	}
	return n, nil
}
