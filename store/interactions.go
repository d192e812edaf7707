package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rushteam/edurec/core"
)

// InteractionLog 是内存实现的交互日志：只追加、按写入顺序读取。
//
// 并发模型：
//   - Record 与读取可并发执行；读方拿到的是调用时刻的追加一致快照
//   - 每次 Record 递增版本号；训练侧对比版本号判断派生矩阵是否过期
//     （显式 staleness 标记，不做自动重算）
type InteractionLog struct {
	mu      sync.RWMutex
	records []core.Interaction
	byUser  map[string][]int // userID -> records 下标，保持写入顺序
	version atomic.Uint64
}

func NewInteractionLog() *InteractionLog {
	return &InteractionLog{
		records: make([]core.Interaction, 0, 1024),
		byUser:  make(map[string][]int),
	}
}

var _ core.InteractionStore = (*InteractionLog)(nil)

// Record 追加一条交互。只校验字段存在性，不校验外键引用
// （无效引用在矩阵构建时被丢弃，而不是在写入时报错）。
func (l *InteractionLog) Record(ctx context.Context, in core.Interaction) error {
	if in.UserID == "" || in.CourseID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: interaction requires userId and courseId")
	}
	if !core.ValidEvent(in.Event) {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: unknown event type "+string(in.Event))
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	l.mu.Lock()
	idx := len(l.records)
	l.records = append(l.records, in)
	l.byUser[in.UserID] = append(l.byUser[in.UserID], idx)
	l.mu.Unlock()

	l.version.Add(1)
	return nil
}

// AllForUser 按写入顺序返回某个用户的全部交互。未知用户返回空序列。
func (l *InteractionLog) AllForUser(ctx context.Context, userID string) ([]core.Interaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idxs := l.byUser[userID]
	if len(idxs) == 0 {
		return nil, nil
	}
	out := make([]core.Interaction, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, l.records[i])
	}
	return out, nil
}

// All 按写入顺序返回全部交互。
func (l *InteractionLog) All(ctx context.Context) ([]core.Interaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Interaction, len(l.records))
	copy(out, l.records)
	return out, nil
}

// Version 返回日志版本号。
func (l *InteractionLog) Version() uint64 {
	return l.version.Load()
}

// Len 返回日志长度。
func (l *InteractionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
