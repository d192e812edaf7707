// Package edurec 是一个课程推荐引擎（Education Recommender）。
//
// 设计要点：
// - 多信号融合：协同过滤（ALS）、内容相似（TF-IDF）、兴趣规则、热门四路信号加权融合
// - 冷启动友好：空信号源的权重按比例再分配给其余信号源，全新用户走兴趣/热门路径
// - 快照并发模型：内容索引与隐因子快照原子发布，推荐读取与训练/写入互不阻塞
// - Pipeline 可编排：blend / filter / rerank 均为可组合 Node，支持 YAML/JSON 配置驱动
package edurec

import "github.com/rushteam/edurec/pipeline"

// 轻量 facade：便于用户直接 import "edurec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindBlend       = pipeline.KindBlend
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
