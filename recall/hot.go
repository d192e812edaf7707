package recall

import (
	"context"
	"sort"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// Hot 是热门召回源：按交互置信度权重聚合全量日志，
// 得到每个课程的热度分（按最大值归一化到 [0,1]，榜首恒为 1.0）。
//
// 读取路径（优先级从高到低）：
//   - Store 实现了 KeyValueStore 且 Key 非空：从有序集合读取预计算榜单
//   - 否则：从交互日志在线聚合
//
// Publish 可把在线聚合结果写回有序集合，供多实例共享。
// Hot 同时实现了 Source 接口，可直接参与 fan-out。
type Hot struct {
	Log     core.InteractionStore
	Catalog *core.Catalog

	Store core.Store
	Key   string // 有序集合 key，例如 "edurec:hot"

	// TopK 返回 TopK 个课程，默认 20
	TopK int
}

func (r *Hot) Name() string { return "recall.hot" }

// Scores 返回全部课程的归一化热度分。
// 没有任何交互时返回空 map；dislike 的置信度为 0，不贡献热度。
func (r *Hot) Scores(ctx context.Context) (map[string]float64, error) {
	if scores, ok := r.storeScores(ctx); ok {
		return scores, nil
	}
	return r.aggregate(ctx)
}

// storeScores 从有序集合读取预计算榜单。读取失败时静默回退到在线聚合。
func (r *Hot) storeScores(ctx context.Context) (map[string]float64, bool) {
	if r.Store == nil || r.Key == "" {
		return nil, false
	}
	kv, ok := r.Store.(core.KeyValueStore)
	if !ok {
		return nil, false
	}
	members, err := kv.ZRange(ctx, r.Key, 0, -1)
	if err != nil || len(members) == 0 {
		return nil, false
	}

	scores := make(map[string]float64, len(members))
	var max float64
	for _, m := range members {
		s, err := kv.ZScore(ctx, r.Key, m)
		if err != nil {
			continue
		}
		if r.Catalog != nil && !r.Catalog.Has(m) {
			continue
		}
		scores[m] = s
		if s > max {
			max = s
		}
	}
	if len(scores) == 0 {
		return nil, false
	}
	if max > 0 {
		for id := range scores {
			scores[id] /= max
		}
	}
	return scores, true
}

// aggregate 从交互日志在线聚合热度。
func (r *Hot) aggregate(ctx context.Context) (map[string]float64, error) {
	if r.Log == nil {
		return map[string]float64{}, nil
	}
	interactions, err := r.Log.All(ctx)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]float64)
	var max float64
	for i := range interactions {
		in := &interactions[i]
		if in.CourseID == "" {
			continue
		}
		if r.Catalog != nil && !r.Catalog.Has(in.CourseID) {
			continue
		}
		raw[in.CourseID] += in.Confidence()
		if raw[in.CourseID] > max {
			max = raw[in.CourseID]
		}
	}

	if max > 0 {
		for id := range raw {
			raw[id] /= max
		}
	}
	return raw, nil
}

// Publish 把在线聚合的热度写入有序集合（需要 Store 支持 KeyValueStore）。
// 写入的是归一化前的原始权重和，读取侧负责归一化。
func (r *Hot) Publish(ctx context.Context) error {
	if r.Store == nil || r.Key == "" {
		return core.ErrStoreNotSupported
	}
	kv, ok := r.Store.(core.KeyValueStore)
	if !ok {
		return core.ErrStoreNotSupported
	}
	if r.Log == nil {
		return nil
	}
	interactions, err := r.Log.All(ctx)
	if err != nil {
		return err
	}
	raw := make(map[string]float64)
	for i := range interactions {
		in := &interactions[i]
		if in.CourseID == "" {
			continue
		}
		if r.Catalog != nil && !r.Catalog.Has(in.CourseID) {
			continue
		}
		raw[in.CourseID] += in.Confidence()
	}
	for id, score := range raw {
		if err := kv.ZAdd(ctx, r.Key, score, id); err != nil {
			return err
		}
	}
	return nil
}

// Recall 实现 Source 接口：按热度降序返回 TopK 候选。
// 热度相同按课程 ID 升序，保证结果确定。
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	scores, err := r.Scores(ctx)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(ids) > topK {
		ids = ids[:topK]
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = scores[id]
		it.AddExplanation("popular among learners")
		it.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
