// Package rerank 提供融合之后的最终调序节点：Top-N 截断与类别多样性。
package rerank

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pipeline"
)

// TopNNode 是 Top-N 截断节点，在融合排序后截取前 N 个课程。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        blendNode,                   // 多源融合排序
//	        &rerank.Diversity{...},      // 类别多样性
//	        &rerank.TopNNode{N: 5},      // 截取 Top 5
//	    },
//	}
type TopNNode struct {
	// N 要保留的课程数量。
	// N <= 0 或 N >= len(items) 时不截断。
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
