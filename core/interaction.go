package core

import (
	"context"
	"time"
)

// EventType 是交互事件类型。
type EventType string

const (
	EventView     EventType = "view"
	EventEnroll   EventType = "enroll"
	EventComplete EventType = "complete"
	EventRate     EventType = "rate"
	EventLike     EventType = "like"
	EventDislike  EventType = "dislike"
)

// 各事件类型的隐式反馈置信度权重。
// 完成 > 点赞/评分 > 报名 > 浏览；dislike 贡献 0（从矩阵中剔除并硬过滤）。
const (
	weightView     = 1.0
	weightEnroll   = 3.0
	weightLike     = 4.0
	weightComplete = 5.0
	weightRateBase = 4.0 // rate 事件按 rating/5 调制
)

// Interaction 是一条用户-课程交互记录。只追加、不可变（见 InteractionStore）。
type Interaction struct {
	UserID    string
	CourseID  string
	Event     EventType
	Timestamp time.Time
	Rating    float64 // 仅 rate 事件有效，1-5
}

// Confidence 返回该交互的隐式置信度权重（未乘 alpha）。
// rate 事件按 rating/5 调制基础权重；dislike 返回 0 表示抑制。
func (in *Interaction) Confidence() float64 {
	switch in.Event {
	case EventView:
		return weightView
	case EventEnroll:
		return weightEnroll
	case EventComplete:
		return weightComplete
	case EventLike:
		return weightLike
	case EventRate:
		if in.Rating <= 0 {
			return weightRateBase
		}
		return weightRateBase * (in.Rating / 5.0)
	case EventDislike:
		return 0
	default:
		return weightView
	}
}

// Positive 判断该交互是否为“正向参与”：enroll / complete / like / rate≥threshold。
// view 不算正向；dislike 与低评分显式排除。
func (in *Interaction) Positive(rateThreshold float64) bool {
	switch in.Event {
	case EventEnroll, EventComplete, EventLike:
		return true
	case EventRate:
		return in.Rating >= rateThreshold
	default:
		return false
	}
}

// ValidEvent 判断事件类型是否在枚举内。
func ValidEvent(e EventType) bool {
	switch e {
	case EventView, EventEnroll, EventComplete, EventRate, EventLike, EventDislike:
		return true
	}
	return false
}

// InteractionStore 是交互日志的领域接口。
//
// 设计原则：
//   - 只追加：每条记录写入后不可变，日志单调增长，不建模删除
//   - 读写并发：Record 可与读取并发执行；读方接受“追加一致”的视图，
//     不要求立即看到最新写入（最终可见即可，见 Version）
//   - 未知 userID 返回空序列，不是错误
type InteractionStore interface {
	// Record 追加一条交互。除类型/字段存在性外不做校验。
	// 副作用：Version 递增，使派生的交互矩阵被标记为过期。
	Record(ctx context.Context, in Interaction) error

	// AllForUser 按写入顺序返回某个用户的全部交互。
	AllForUser(ctx context.Context, userID string) ([]Interaction, error)

	// All 按写入顺序返回全部交互（用于矩阵构建与热度聚合）。
	All(ctx context.Context) ([]Interaction, error)

	// Version 返回日志版本号：每次 Record 递增。
	// 训练侧用它判断快照是否已过期（显式 staleness 标记，而非自动重算）。
	Version() uint64
}

// InteractionFeed 是外部交互数据源（CSV 文件、Redis、数据库等）的读取接口。
// 服务启动前一次性加载进内存日志；具体后端对核心无关紧要。
type InteractionFeed interface {
	Load(ctx context.Context) ([]Interaction, error)
}
