package recall

import (
	"context"
	"strings"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/store"
	"github.com/rushteam/edurec/textindex"
)

func contentFixture(t *testing.T) (*core.Catalog, *textindex.Index, *store.InteractionLog) {
	t.Helper()
	catalog := core.NewCatalog([]core.Course{
		{ID: "A", Title: "Python Data Analysis", Description: "Analyze data with python pandas", SkillTags: []string{"python", "pandas"}},
		{ID: "B", Title: "Woodworking Workshop", Description: "Build furniture by hand", SkillTags: []string{"crafts"}},
		{ID: "C", Title: "Python Machine Learning", Description: "Machine learning models with python pandas", SkillTags: []string{"python", "pandas"}},
	})
	index := textindex.NewIndex()
	index.Fit(catalog.All())
	return catalog, index, store.NewInteractionLog()
}

func TestContentRecallRanksSimilarFirst(t *testing.T) {
	catalog, index, log := contentFixture(t)
	record(t, log, core.Interaction{UserID: "u1", CourseID: "A", Event: core.EventComplete})

	r := &ContentRecall{Index: index, Log: log, Catalog: catalog}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected candidates similar to A")
	}

	// C shares python/pandas terms with A, B shares nothing
	if items[0].ID != "C" {
		t.Errorf("first = %s, want C", items[0].ID)
	}
	for _, it := range items {
		if it.ID == "A" {
			t.Error("already-engaged course must not be recommended back")
		}
	}

	found := false
	for _, reason := range items[0].Explanations {
		if strings.Contains(reason, "similar to Python Data Analysis") {
			found = true
		}
	}
	if !found {
		t.Errorf("explanation should cite the source course, got %v", items[0].Explanations)
	}
}

func TestContentRecallNoPositiveHistory(t *testing.T) {
	catalog, index, log := contentFixture(t)
	// views and dislikes are not positive engagement
	record(t, log,
		core.Interaction{UserID: "u1", CourseID: "A", Event: core.EventView},
		core.Interaction{UserID: "u1", CourseID: "C", Event: core.EventDislike},
		core.Interaction{UserID: "u1", CourseID: "B", Event: core.EventRate, Rating: 2},
	)

	r := &ContentRecall{Index: index, Log: log, Catalog: catalog}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("no positive history must yield no signal, got %d items", len(items))
	}
}

func TestContentRecallHighRatingIsPositive(t *testing.T) {
	catalog, index, log := contentFixture(t)
	record(t, log, core.Interaction{UserID: "u1", CourseID: "A", Event: core.EventRate, Rating: 4})

	r := &ContentRecall{Index: index, Log: log, Catalog: catalog}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(items) == 0 || items[0].ID != "C" {
		t.Fatalf("rating above threshold counts as positive, got %v", items)
	}
}

func TestContentRecallUnknownUser(t *testing.T) {
	catalog, index, log := contentFixture(t)

	r := &ContentRecall{Index: index, Log: log, Catalog: catalog}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "stranger"})
	if err != nil {
		t.Fatalf("unknown user must not be an error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("unknown user yields empty, got %d items", len(items))
	}
}
