package recall

import (
	"context"
	"sort"

	"github.com/rushteam/edurec/als"
	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// ALSRecall 是协同过滤召回源：读取 ALS 模型的隐因子快照，
// 对用户未交互过的课程按隐向量点积打分。
//
// 核心思想：“和你行为相似的用户喜欢的课程，你也可能喜欢”。
//
// 无信号场景全部返回 (nil, nil)，由融合层做权重再分配：
//   - 模型未训练（快照为 nil）
//   - 用户不在训练语料中（冷用户）
//   - 用户已交互过全部课程
type ALSRecall struct {
	Model *als.Model

	// TopK 返回 TopK 个课程，默认 20
	TopK int
}

func (r *ALSRecall) Name() string { return "recall.als" }

func (r *ALSRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	snap := r.Model.Snapshot()
	if snap == nil {
		return nil, nil
	}
	if _, ok := snap.UserFactors[rctx.UserID]; !ok {
		return nil, nil
	}

	// 遍历顺序固定（课程 ID 升序），保证同分时的排序确定
	itemIDs := make([]string, 0, len(snap.ItemFactors))
	for id := range snap.ItemFactors {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	type scored struct {
		id    string
		score float64
	}
	candidates := make([]scored, 0, len(itemIDs))
	for _, id := range itemIDs {
		// 已交互课程不再推荐（dislike 同样在列）
		if snap.HasInteracted(rctx.UserID, id) {
			continue
		}
		if pred, ok := snap.Predict(rctx.UserID, id); ok {
			candidates = append(candidates, scored{id: id, score: pred})
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
		it.AddExplanation("users similar to you liked this")
		it.PutLabel("recall_source", utils.Label{Value: "als", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
