package filter

import (
	"context"
	"sync"

	"github.com/rushteam/edurec/core"
)

// InteractedFilter 是交互历史硬过滤器：
// 无论融合分多高，命中指定事件（默认 complete 与 dislike）的课程一律移除。
// 这是终局性的过滤，跑在排序截断之前（见 hybrid.Blender）。
type InteractedFilter struct {
	Log core.InteractionStore

	// Events 触发过滤的事件类型；为空时默认 {complete, dislike}
	Events []core.EventType

	// 同一日志版本下按用户缓存已过滤集合，避免逐候选重复扫描
	mu      sync.Mutex
	cached  map[string]struct{}
	userID  string
	version uint64
}

func NewInteractedFilter(log core.InteractionStore, events ...core.EventType) *InteractedFilter {
	if len(events) == 0 {
		events = []core.EventType{core.EventComplete, core.EventDislike}
	}
	return &InteractedFilter{Log: log, Events: events}
}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

// Excluded 返回用户命中过滤事件的课程集合。
func (f *InteractedFilter) Excluded(ctx context.Context, userID string) (map[string]struct{}, error) {
	if f.Log == nil || userID == "" {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	version := f.Log.Version()
	if f.cached != nil && f.userID == userID && f.version == version {
		return f.cached, nil
	}

	interactions, err := f.Log.AllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]struct{})
	for i := range interactions {
		in := &interactions[i]
		for _, ev := range f.Events {
			if in.Event == ev {
				excluded[in.CourseID] = struct{}{}
				break
			}
		}
	}
	f.cached = excluded
	f.userID = userID
	f.version = version
	return excluded, nil
}

func (f *InteractedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	excluded, err := f.Excluded(ctx, rctx.UserID)
	if err != nil {
		return false, err
	}
	_, ok := excluded[item.ID]
	return ok, nil
}
