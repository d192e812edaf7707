package recall

import (
	"context"
	"sort"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
	"github.com/rushteam/edurec/textindex"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想：“用户正向参与过某些课程，推荐文本内容相似的其他课程”。
// 正向参与 = enroll / complete / like / rate≥RateThreshold；view 不算。
// 候选分 = 与正向集合中任一课程的最大余弦相似度；
// 解释取相似度最高的那门课程：“similar to <title>”。
type ContentRecall struct {
	Index   *textindex.Index
	Log     core.InteractionStore
	Catalog *core.Catalog

	// TopK 返回 TopK 个课程，默认 20
	TopK int

	// RateThreshold 评分事件计入正向的阈值，默认 3.5
	RateThreshold float64
}

func (r *ContentRecall) Name() string { return "recall.content" }

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || !r.Index.Fitted() || r.Catalog == nil {
		return nil, nil
	}
	if r.Log == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	interactions, err := r.Log.AllForUser(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}

	threshold := r.RateThreshold
	if threshold <= 0 {
		threshold = 3.5
	}

	// 正向集合按首次出现顺序保序；interacted 用于排除已接触课程
	positive := make([]string, 0, len(interactions))
	positiveSet := make(map[string]struct{})
	interacted := make(map[string]struct{})
	for i := range interactions {
		in := &interactions[i]
		if !r.Catalog.Has(in.CourseID) {
			continue
		}
		interacted[in.CourseID] = struct{}{}
		if !in.Positive(threshold) {
			continue
		}
		if _, ok := positiveSet[in.CourseID]; ok {
			continue
		}
		positiveSet[in.CourseID] = struct{}{}
		positive = append(positive, in.CourseID)
	}
	// 没有正向历史 = 无内容信号（冷用户走兴趣/热门）
	if len(positive) == 0 {
		return nil, nil
	}

	type scored struct {
		id     string
		score  float64
		anchor string // 相似度最高的正向课程，用于解释
	}
	candidates := make([]scored, 0, r.Catalog.Len())
	for _, id := range r.Catalog.IDs() {
		if _, ok := interacted[id]; ok {
			continue
		}
		var best float64
		var anchor string
		for _, pos := range positive {
			sim := r.Index.Similarity(id, pos)
			if sim > best {
				best = sim
				anchor = pos
			}
		}
		if best > 0 {
			candidates = append(candidates, scored{id: id, score: best, anchor: anchor})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		it := core.NewItem(c.id)
		it.Score = c.score
		if title := r.Catalog.TitleOf(c.anchor); title != "" {
			it.AddExplanation("similar to " + title)
		}
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
