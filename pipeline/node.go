package pipeline

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：各信号源生成候选集
	KindBlend       Kind = "blend"       // 融合阶段：多源加权合并（含权重再分配）
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindReRank      Kind = "rerank"      // 重排阶段：多样性/截断等最终调优
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充展示元数据等最终修饰
)

// Node 是推荐链路的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态：
// 召回生成、融合改写分数、过滤截断、重排调序都是同一形态的变换。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
