// Package config 把 pipeline 配置（YAML/JSON）装配成可执行的 Node 链。
// 工厂持有共享依赖（目录/日志/索引/模型/存储），按配置构建各内置 Node。
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/edurec/als"
	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/feature"
	"github.com/rushteam/edurec/filter"
	"github.com/rushteam/edurec/hybrid"
	"github.com/rushteam/edurec/pipeline"
	"github.com/rushteam/edurec/pkg/conv"
	"github.com/rushteam/edurec/recall"
	"github.com/rushteam/edurec/rerank"
	"github.com/rushteam/edurec/textindex"
)

// Deps 是构建 Node 所需的共享依赖。
// 字段均可为 nil：缺失依赖的 Node 在构建时报错，而不是运行期 panic。
type Deps struct {
	Catalog *core.Catalog
	Log     core.InteractionStore
	Index   *textindex.Index
	Model   *als.Model
	Store   core.Store
}

// DefaultFactory 返回包含所有内置 Node 的工厂。
//
// 支持的类型：
//   - hybrid.blend      多源加权融合（weights / k / timeout / max_concurrent）
//   - recall.hot        热门召回（key / top_k）
//   - filter.interacted 交互历史硬过滤（events）
//   - filter.rule       CEL 规则过滤（expr）
//   - filter.catalog    目录守卫
//   - rerank.diversity  类别多样性（max_per_category）
//   - rerank.topn       Top-N 截断（n）
//   - feature.enrich    课程元数据注入（fields）
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("hybrid.blend", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildBlendNode(deps, cfg)
	})
	factory.Register("recall.hot", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildHotNode(deps, cfg)
	})
	factory.Register("filter.interacted", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildInteractedNode(deps, cfg)
	})
	factory.Register("filter.rule", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildRuleNode(deps, cfg)
	})
	factory.Register("filter.catalog", func(cfg map[string]interface{}) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("filter.catalog: catalog is required")
		}
		return &filter.FilterNode{Filters: []filter.Filter{&filter.CatalogFilter{Catalog: deps.Catalog}}}, nil
	})
	factory.Register("rerank.diversity", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.Diversity{
			Catalog:        deps.Catalog,
			MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 1)),
			LabelKey:       conv.ConfigGet[string](cfg, "label_key", ""),
		}, nil
	})
	factory.Register("rerank.topn", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
	})
	factory.Register("feature.enrich", func(cfg map[string]interface{}) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("feature.enrich: catalog is required")
		}
		return &feature.CourseEnrich{
			Catalog: deps.Catalog,
			Fields:  conv.SliceAnyToString(cfg["fields"]),
		}, nil
	})

	return factory
}

// BuildSource 按短名构建召回源：als / content / interest / hot。
func BuildSource(deps Deps, name string, topK int) (recall.Source, error) {
	switch name {
	case "als":
		if deps.Model == nil {
			return nil, fmt.Errorf("source als: model is required")
		}
		return &recall.ALSRecall{Model: deps.Model, TopK: topK}, nil
	case "content":
		if deps.Index == nil || deps.Log == nil || deps.Catalog == nil {
			return nil, fmt.Errorf("source content: index, log and catalog are required")
		}
		return &recall.ContentRecall{Index: deps.Index, Log: deps.Log, Catalog: deps.Catalog, TopK: topK}, nil
	case "interest":
		if deps.Catalog == nil {
			return nil, fmt.Errorf("source interest: catalog is required")
		}
		return &recall.InterestRecall{Catalog: deps.Catalog, Hot: hotSource(deps, "", topK), TopK: topK}, nil
	case "hot":
		if deps.Log == nil && deps.Store == nil {
			return nil, fmt.Errorf("source hot: log or store is required")
		}
		return hotSource(deps, "", topK), nil
	}
	return nil, fmt.Errorf("unknown source: %s", name)
}

func hotSource(deps Deps, key string, topK int) *recall.Hot {
	return &recall.Hot{
		Log:     deps.Log,
		Catalog: deps.Catalog,
		Store:   deps.Store,
		Key:     key,
		TopK:    topK,
	}
}

func buildBlendNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	weightsRaw, ok := cfg["weights"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("hybrid.blend: weights not found")
	}
	weights := conv.MapToFloat64(weightsRaw)

	k := int(conv.ConfigGetInt64(cfg, "k", 0))
	// 召回深度取 3k，给过滤/去重留出余量
	topK := k * 3
	if topK <= 0 {
		topK = 20
	}

	// 权重遍历顺序固定：als / content / interest / hot
	order := []string{"als", "content", "interest", "hot"}
	sources := make([]hybrid.WeightedSource, 0, len(weights))
	for _, name := range order {
		w, ok := weights[name]
		if !ok {
			continue
		}
		src, err := BuildSource(deps, name, topK)
		if err != nil {
			return nil, fmt.Errorf("hybrid.blend: %w", err)
		}
		sources = append(sources, hybrid.WeightedSource{Source: src, Weight: w})
	}
	for name := range weights {
		known := false
		for _, o := range order {
			if name == o {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("hybrid.blend: unknown source in weights: %s", name)
		}
	}

	blender, err := hybrid.NewBlender(sources)
	if err != nil {
		return nil, err
	}
	blender.Catalog = deps.Catalog
	blender.K = k
	if deps.Log != nil {
		blender.Interacted = filter.NewInteractedFilter(deps.Log)
		blender.Hot = hotSource(deps, "", topK)
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		blender.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		blender.MaxConcurrent = int(n)
	}
	return blender, nil
}

func buildHotNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	if deps.Log == nil && deps.Store == nil {
		return nil, fmt.Errorf("recall.hot: log or store is required")
	}
	hot := hotSource(deps,
		conv.ConfigGet[string](cfg, "key", ""),
		int(conv.ConfigGetInt64(cfg, "top_k", 0)),
	)
	return &recallNode{hot}, nil
}

func buildInteractedNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("filter.interacted: log is required")
	}
	events := make([]core.EventType, 0, 2)
	for _, s := range conv.SliceAnyToString(cfg["events"]) {
		ev := core.EventType(s)
		if !core.ValidEvent(ev) {
			return nil, fmt.Errorf("filter.interacted: unknown event type: %s", s)
		}
		events = append(events, ev)
	}
	return &filter.FilterNode{Filters: []filter.Filter{
		filter.NewInteractedFilter(deps.Log, events...),
	}}, nil
}

func buildRuleNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	expr := conv.ConfigGet[string](cfg, "expr", "")
	rule, err := filter.NewRuleFilter(expr, deps.Catalog)
	if err != nil {
		return nil, fmt.Errorf("filter.rule: %w", err)
	}
	return &filter.FilterNode{Filters: []filter.Filter{rule}}, nil
}

// recallNode 把 Source 适配为 pipeline.Node（追加模式：候选并入上游输入）。
type recallNode struct {
	src recall.Source
}

func (n *recallNode) Name() string        { return n.src.Name() }
func (n *recallNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *recallNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	got, err := n.src.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return append(items, got...), nil
}
