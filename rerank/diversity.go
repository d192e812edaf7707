package rerank

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pipeline"
)

// Diversity 是类别多样性重排：限制同一类别的课程数量（默认每类 1 个），
// 避免 Top-N 被单一类别霸榜。输入应已按分数降序排列，重排保留原相对顺序。
//
// 类别来源优先级：
//   - Catalog 中课程的 Category
//   - label["category"].Value
//   - meta["category"] (string)
type Diversity struct {
	Catalog *core.Catalog

	// MaxPerCategory 每个类别最多保留的数量，默认 1
	MaxPerCategory int

	// LabelKey 类别 Label/Meta 的 key，默认 "category"
	LabelKey string
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	maxPer := n.MaxPerCategory
	if maxPer <= 0 {
		maxPer = 1
	}

	count := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}
		cate := n.categoryOf(it, key)
		// 无类别信息的课程不参与限额
		if cate == "" {
			out = append(out, it)
			continue
		}
		if count[cate] >= maxPer {
			continue
		}
		count[cate]++
		out = append(out, it)
	}

	return out, nil
}

func (n *Diversity) categoryOf(it *core.Item, key string) string {
	if n.Catalog != nil {
		if c, ok := n.Catalog.Get(it.ID); ok && c.Category != "" {
			return c.Category
		}
	}
	if it.Labels != nil {
		if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
			return lbl.Value
		}
	}
	if it.Meta != nil {
		if v, ok := it.Meta[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
