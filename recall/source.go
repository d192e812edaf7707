// Package recall 提供课程推荐的召回源：协同过滤、内容相似、
// 兴趣规则、热门。每个源独立产出带分数的候选集，
// 由上层（hybrid.Blender 或 pipeline）并发 fan-out 后融合。
package recall

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Source 表示一个可复用的召回源（协同/内容/兴趣/热门/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
//
// 契约：无信号（冷用户、空画像、未训练）返回 (nil, nil)，不是错误；
// 返回的分数不要求归一化，融合层会做 per-source 的 min-max 归一化。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
