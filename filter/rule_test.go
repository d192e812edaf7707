package filter

import (
	"context"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

func ruleCatalog() *core.Catalog {
	return core.NewCatalog([]core.Course{
		{ID: "c1", Title: "Python Basics", Category: "programming", Difficulty: "beginner"},
		{ID: "c2", Title: "Deep Learning", Category: "data science", Difficulty: "advanced"},
	})
}

func TestRuleFilterCompileError(t *testing.T) {
	_, err := NewRuleFilter("item.score >>> 1", ruleCatalog())
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !core.IsInvalidInput(err) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}

	_, err = NewRuleFilter("", ruleCatalog())
	if err == nil {
		t.Fatal("empty expression is a configuration error")
	}
}

func TestRuleFilterShouldFilter(t *testing.T) {
	f, err := NewRuleFilter(`item.difficulty == "advanced"`, ruleCatalog())
	if err != nil {
		t.Fatalf("new rule filter: %v", err)
	}
	ctx := context.Background()
	rctx := &core.RecommendContext{UserID: "u1"}

	beginner := core.NewItem("c1")
	advanced := core.NewItem("c2")

	if got, _ := f.ShouldFilter(ctx, rctx, beginner); got {
		t.Error("beginner course must pass")
	}
	if got, _ := f.ShouldFilter(ctx, rctx, advanced); !got {
		t.Error("advanced course must be filtered")
	}
}

func TestRuleFilterLabelsAndScore(t *testing.T) {
	f, err := NewRuleFilter(`label.recall_source == "hot" && item.score < 0.2`, ruleCatalog())
	if err != nil {
		t.Fatalf("new rule filter: %v", err)
	}
	ctx := context.Background()

	lowHot := core.NewItem("c1")
	lowHot.Score = 0.1
	lowHot.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})

	highHot := core.NewItem("c1")
	highHot.Score = 0.9
	highHot.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})

	if got, _ := f.ShouldFilter(ctx, nil, lowHot); !got {
		t.Error("low-score hot item must be filtered")
	}
	if got, _ := f.ShouldFilter(ctx, nil, highHot); got {
		t.Error("high-score hot item must pass")
	}
}

func TestFilterNodeCombines(t *testing.T) {
	rule, err := NewRuleFilter(`item.difficulty == "advanced"`, ruleCatalog())
	if err != nil {
		t.Fatalf("new rule filter: %v", err)
	}
	node := &FilterNode{Filters: []Filter{
		&CatalogFilter{Catalog: ruleCatalog()},
		rule,
	}}

	items := []*core.Item{
		core.NewItem("c1"),    // passes both
		core.NewItem("c2"),    // advanced, filtered by rule
		core.NewItem("ghost"), // outside catalog
	}
	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, items)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out) != 1 || out[0].ID != "c1" {
		t.Errorf("got %v, want only c1", out)
	}
}
