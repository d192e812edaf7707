// Package hybrid 实现多信号源的加权融合，是整个推荐链路的核心节点。
//
// 融合流程（每次请求）：
//  1. 并发 fan-out 全部召回源（协同/内容/兴趣/热门）
//  2. 对每个源的候选分做 min-max 归一化到 [0,1]
//  3. 空源的权重按剩余活跃源的权重占比再分配：
//     协同源为空时它的 0.7 按 2:1 分给内容源与热门源，
//     而不是让总分整体缩水——这是冷启动正确性的来源
//  4. 同一课程的多源得分加权求和，解释文案做保序并集
//  5. 硬过滤：已完成/已点踩的课程无条件移除（先于排序截断）
//  6. 按融合分降序排序，同分按热度降序、再按课程 ID 升序，截取 Top-K
package hybrid

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/filter"
	"github.com/rushteam/edurec/pipeline"
	"github.com/rushteam/edurec/pkg/utils"
	"github.com/rushteam/edurec/recall"
)

// WeightedSource 是参与融合的召回源及其基础权重。
type WeightedSource struct {
	Source recall.Source
	Weight float64
}

// Blender 是加权融合节点，同时实现 pipeline.Node。
//
// 失败语义：单个召回源出错视为该源为空（不中断其他源）；
// 全部源为空时返回空结果，不报错。
type Blender struct {
	Sources []WeightedSource

	// Catalog 目录守卫：不在目录中的候选直接丢弃
	Catalog *core.Catalog

	// Interacted 硬过滤器（已完成/已点踩），可为 nil
	Interacted *filter.InteractedFilter

	// Hot 可选，仅用于同分时的热度 tie-break
	Hot *recall.Hot

	// K 最终返回数量，<= 0 时不截断
	K int

	// Timeout 单个召回源的超时时间，0 表示不限制
	Timeout time.Duration

	// MaxConcurrent 召回 fan-out 的最大并发数，0 表示无限制
	MaxConcurrent int
}

// NewBlender 创建融合节点并校验权重配置：
// 权重不可为负，且至少有一个源的权重为正。
func NewBlender(sources []WeightedSource, opts ...func(*Blender)) (*Blender, error) {
	var sum float64
	for _, ws := range sources {
		if ws.Weight < 0 {
			return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "hybrid: source weight must not be negative")
		}
		if ws.Source == nil {
			return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "hybrid: nil source")
		}
		sum += ws.Weight
	}
	if len(sources) == 0 || sum <= 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "hybrid: at least one source with positive weight is required")
	}
	b := &Blender{Sources: sources}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Blender) Name() string        { return "hybrid.blend" }
func (b *Blender) Kind() pipeline.Kind { return pipeline.KindBlend }

// Process 实现 Node 接口，忽略上游输入，直接执行融合。
func (b *Blender) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return b.Blend(ctx, rctx)
}

// Blend 执行一次完整融合，返回按融合分降序的 Top-K 课程。
func (b *Blender) Blend(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	results := b.fanout(ctx, rctx)

	// 活跃源 = 至少产出一个候选的源；空源不参与权重分母
	var totalWeight float64
	for i, items := range results {
		if len(items) > 0 {
			totalWeight += b.Sources[i].Weight
		}
	}
	if totalWeight <= 0 {
		return []*core.Item{}, nil
	}

	// 加权合并：blended[id] += (w_i / W) * normalize(score)
	blended := make(map[string]*core.Item)
	for i, items := range results {
		if len(items) == 0 {
			continue
		}
		weight := b.Sources[i].Weight / totalWeight
		normalize(items)

		for _, it := range items {
			if it == nil || it.ID == "" {
				continue
			}
			if b.Catalog != nil && !b.Catalog.Has(it.ID) {
				continue
			}
			merged, ok := blended[it.ID]
			if !ok {
				merged = core.NewItem(it.ID)
				blended[it.ID] = merged
			}
			merged.Score += weight * it.Score
			for _, reason := range it.Explanations {
				merged.AddExplanation(reason)
			}
			for k, v := range it.Labels {
				merged.PutLabel(k, v)
			}
		}
	}
	if len(blended) == 0 {
		return []*core.Item{}, nil
	}

	// 硬过滤先于排序截断：被过滤课程不占 Top-K 名额
	if b.Interacted != nil && rctx != nil && rctx.UserID != "" {
		excluded, err := b.Interacted.Excluded(ctx, rctx.UserID)
		if err != nil {
			return nil, err
		}
		for id := range excluded {
			delete(blended, id)
		}
	}

	var popularity map[string]float64
	if b.Hot != nil {
		if scores, err := b.Hot.Scores(ctx); err == nil {
			popularity = scores
		}
	}

	out := make([]*core.Item, 0, len(blended))
	for _, it := range blended {
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		pi, pj := popularity[out[i].ID], popularity[out[j].ID]
		if pi != pj {
			return pi > pj
		}
		return out[i].ID < out[j].ID
	})

	if b.K > 0 && len(out) > b.K {
		out = out[:b.K]
	}
	return out, nil
}

// fanout 并发执行全部召回源，结果按源的下标对齐返回。
// 单个源的错误/超时吞掉并记为空，不影响其他源。
func (b *Blender) fanout(ctx context.Context, rctx *core.RecommendContext) [][]*core.Item {
	results := make([][]*core.Item, len(b.Sources))

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	if b.MaxConcurrent > 0 {
		eg.SetLimit(b.MaxConcurrent)
	}

	for i, ws := range b.Sources {
		idx, src := i, ws.Source
		eg.Go(func() error {
			recallCtx := egCtx
			if b.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, b.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				return nil
			}
			for _, it := range items {
				if it != nil {
					it.PutLabel("blend_source", utils.Label{Value: src.Name(), Source: "hybrid"})
				}
			}

			mu.Lock()
			results[idx] = items
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// normalize 对单个源的候选分做 min-max 归一化。
// 全员同分（含单候选）时归一到 1.0，保留“该源推荐了它们”的完整信号。
func normalize(items []*core.Item) {
	if len(items) == 0 {
		return
	}
	min, max := items[0].Score, items[0].Score
	for _, it := range items[1:] {
		if it.Score < min {
			min = it.Score
		}
		if it.Score > max {
			max = it.Score
		}
	}
	if max == min {
		for _, it := range items {
			it.Score = 1.0
		}
		return
	}
	span := max - min
	for _, it := range items {
		it.Score = (it.Score - min) / span
	}
}
