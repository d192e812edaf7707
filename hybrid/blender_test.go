package hybrid

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/filter"
	"github.com/rushteam/edurec/store"
)

// stubSource 返回固定候选，用于精确验证融合算法本身。
type stubSource struct {
	name  string
	items []*core.Item
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(s.items))
	for _, it := range s.items {
		cp := core.NewItem(it.ID)
		cp.Score = it.Score
		for _, e := range it.Explanations {
			cp.AddExplanation(e)
		}
		out = append(out, cp)
	}
	return out, nil
}

func item(id string, score float64, reasons ...string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	for _, r := range reasons {
		it.AddExplanation(r)
	}
	return it
}

func blendCatalog() *core.Catalog {
	return core.NewCatalog([]core.Course{
		{ID: "A", Title: "Course A"},
		{ID: "B", Title: "Course B"},
		{ID: "C", Title: "Course C"},
		{ID: "D", Title: "Course D"},
	})
}

func TestBlendWeightedSum(t *testing.T) {
	// 两个源都给出候选：A 两源都推（归一化后均为 1.0），B 只有一源
	b, err := NewBlender([]WeightedSource{
		{Source: &stubSource{name: "s1", items: []*core.Item{item("A", 2.0), item("B", 1.0)}}, Weight: 0.6},
		{Source: &stubSource{name: "s2", items: []*core.Item{item("A", 5.0), item("C", 1.0)}}, Weight: 0.4},
	})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}
	b.Catalog = blendCatalog()

	items, err := b.Blend(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].ID != "A" {
		t.Fatalf("first = %s, want A", items[0].ID)
	}
	// A 在两个源内都是最高分（min-max 后 1.0）：0.6*1.0 + 0.4*1.0 = 1.0
	if math.Abs(items[0].Score-1.0) > 1e-9 {
		t.Errorf("score(A) = %v, want 1.0", items[0].Score)
	}
	// B 仅在 s1 中且为最低分（min-max 后 0.0）
	for _, it := range items {
		if it.ID == "B" && it.Score != 0 {
			t.Errorf("score(B) = %v, want 0", it.Score)
		}
	}
}

func TestBlendWeightRedistribution(t *testing.T) {
	// 协同源为空：0.7 的权重应按 2:1 再分配给 content(0.2) 与 hot(0.1)
	empty := &stubSource{name: "als"}
	content := &stubSource{name: "content", items: []*core.Item{item("A", 1.0), item("B", 0.5), item("C", 0.1)}}
	hot := &stubSource{name: "hot", items: []*core.Item{item("D", 1.0), item("B", 0.4)}}

	b, err := NewBlender([]WeightedSource{
		{Source: empty, Weight: 0.7},
		{Source: content, Weight: 0.2},
		{Source: hot, Weight: 0.1},
	})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}
	b.Catalog = blendCatalog()

	items, err := b.Blend(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("blend: %v", err)
	}

	scores := make(map[string]float64, len(items))
	for _, it := range items {
		scores[it.ID] = it.Score
	}
	// 活跃权重和为 0.3，归一化后 content=2/3, hot=1/3
	if math.Abs(scores["A"]-2.0/3.0) > 1e-9 {
		t.Errorf("score(A) = %v, want 2/3 (content weight fully redistributed)", scores["A"])
	}
	if math.Abs(scores["D"]-1.0/3.0) > 1e-9 {
		t.Errorf("score(D) = %v, want 1/3", scores["D"])
	}
	// 有效权重总和必须为 1.0：满分候选可以拿到满分
	var sum float64
	sum = scores["A"] + scores["D"] // A=content 满分, D=hot 满分
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("active weights must renormalize to 1.0, top scores sum = %v", sum)
	}
}

func TestBlendAllSourcesEmpty(t *testing.T) {
	b, err := NewBlender([]WeightedSource{
		{Source: &stubSource{name: "s1"}, Weight: 0.7},
		{Source: &stubSource{name: "s2"}, Weight: 0.3},
	})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}

	items, err := b.Blend(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("all-empty must not be an error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want empty", len(items))
	}
}

func TestBlendHardFilter(t *testing.T) {
	log := store.NewInteractionLog()
	ctx := context.Background()
	if err := log.Record(ctx, core.Interaction{UserID: "u1", CourseID: "A", Event: core.EventComplete}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := log.Record(ctx, core.Interaction{UserID: "u1", CourseID: "B", Event: core.EventDislike}); err != nil {
		t.Fatalf("record: %v", err)
	}

	// A 是全场最高分，但已完成：硬过滤优先于排序截断
	src := &stubSource{name: "s1", items: []*core.Item{item("A", 1.0), item("B", 0.9), item("C", 0.5), item("D", 0.1)}}
	b, err := NewBlender([]WeightedSource{{Source: src, Weight: 1.0}})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}
	b.Catalog = blendCatalog()
	b.Interacted = filter.NewInteractedFilter(log)
	b.K = 2

	items, err := b.Blend(ctx, &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, it := range items {
		if it.ID == "A" || it.ID == "B" {
			t.Errorf("completed/disliked course %s must never surface", it.ID)
		}
	}
	// 被过滤课程不占名额：C 和 D 都应出现
	if items[0].ID != "C" || items[1].ID != "D" {
		t.Errorf("order = %s, %s, want C, D", items[0].ID, items[1].ID)
	}
}

func TestBlendIdempotent(t *testing.T) {
	b, err := NewBlender([]WeightedSource{
		{Source: &stubSource{name: "s1", items: []*core.Item{item("A", 0.9), item("B", 0.9), item("C", 0.2)}}, Weight: 0.5},
		{Source: &stubSource{name: "s2", items: []*core.Item{item("B", 1.0), item("D", 0.3)}}, Weight: 0.5},
	})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}
	b.Catalog = blendCatalog()

	rctx := &core.RecommendContext{UserID: "u1"}
	first, err := b.Blend(context.Background(), rctx)
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	second, err := b.Blend(context.Background(), rctx)
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
			t.Errorf("position %d differs: %s(%v) vs %s(%v)",
				i, first[i].ID, first[i].Score, second[i].ID, second[i].Score)
		}
	}
}

func TestBlendExplanationUnion(t *testing.T) {
	b, err := NewBlender([]WeightedSource{
		{Source: &stubSource{name: "s1", items: []*core.Item{item("A", 1.0, "users similar to you liked this")}}, Weight: 0.5},
		{Source: &stubSource{name: "s2", items: []*core.Item{item("A", 1.0, "popular among learners")}}, Weight: 0.5},
	})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}
	b.Catalog = blendCatalog()

	items, err := b.Blend(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if len(items[0].Explanations) != 2 {
		t.Errorf("explanations = %v, want union of both sources", items[0].Explanations)
	}
}

func TestBlendCatalogGuard(t *testing.T) {
	// ghost 不在目录中，必须被丢弃
	b, err := NewBlender([]WeightedSource{
		{Source: &stubSource{name: "s1", items: []*core.Item{item("ghost", 1.0), item("A", 0.5)}}, Weight: 1.0},
	})
	if err != nil {
		t.Fatalf("new blender: %v", err)
	}
	b.Catalog = blendCatalog()

	items, err := b.Blend(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	for _, it := range items {
		if it.ID == "ghost" {
			t.Error("course outside the catalog must never surface")
		}
	}
}

func TestNewBlenderValidation(t *testing.T) {
	tests := []struct {
		name    string
		sources []WeightedSource
	}{
		{name: "no sources", sources: nil},
		{name: "negative weight", sources: []WeightedSource{{Source: &stubSource{name: "s"}, Weight: -0.1}}},
		{name: "all zero weights", sources: []WeightedSource{{Source: &stubSource{name: "s"}, Weight: 0}}},
		{name: "nil source", sources: []WeightedSource{{Source: nil, Weight: 1.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBlender(tt.sources)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}
