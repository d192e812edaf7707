package core

import "github.com/rushteam/edurec/pkg/utils"

// Item 是推荐链路中的统一承载结构：分数、解释、元信息、标签。
// Score 用于排序决策；Explanations 面向用户展示；Labels 用于策略驱动与观测。
type Item struct {
	ID           string // 课程 ID
	Score        float64
	Explanations []string
	Meta         map[string]any
	Labels       map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:           id,
		Score:        0,
		Explanations: make([]string, 0, 2),
		Meta:         make(map[string]any),
		Labels:       make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// AddExplanation 追加一条用户可读的推荐理由，保持插入顺序并去重。
func (it *Item) AddExplanation(reason string) {
	if reason == "" {
		return
	}
	for _, e := range it.Explanations {
		if e == reason {
			return
		}
	}
	it.Explanations = append(it.Explanations, reason)
}
