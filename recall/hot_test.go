package recall

import (
	"context"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/store"
)

func hotCatalog() *core.Catalog {
	return core.NewCatalog([]core.Course{
		{ID: "A", Title: "Course A"},
		{ID: "B", Title: "Course B"},
		{ID: "C", Title: "Course C"},
	})
}

func record(t *testing.T, log *store.InteractionLog, interactions ...core.Interaction) {
	t.Helper()
	for _, in := range interactions {
		if err := log.Record(context.Background(), in); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
}

func TestHotScores(t *testing.T) {
	log := store.NewInteractionLog()
	// A: 5 completes, B: 1 view
	for i := 0; i < 5; i++ {
		record(t, log, core.Interaction{UserID: "u", CourseID: "A", Event: core.EventComplete})
	}
	record(t, log, core.Interaction{UserID: "u", CourseID: "B", Event: core.EventView})

	hot := &Hot{Log: log, Catalog: hotCatalog()}
	scores, err := hot.Scores(context.Background())
	if err != nil {
		t.Fatalf("scores: %v", err)
	}

	// the top course is normalized to exactly 1.0
	if scores["A"] != 1.0 {
		t.Errorf("score(A) = %v, want 1.0", scores["A"])
	}
	if scores["B"] <= 0 || scores["B"] >= scores["A"] {
		t.Errorf("score(B) = %v, want in (0, 1)", scores["B"])
	}
	// zero interactions is a valid absent entry, not an error
	if _, ok := scores["C"]; ok {
		t.Errorf("C has no interactions and no score entry")
	}
}

func TestHotDislikeContributesNothing(t *testing.T) {
	log := store.NewInteractionLog()
	record(t, log,
		core.Interaction{UserID: "u1", CourseID: "A", Event: core.EventView},
		core.Interaction{UserID: "u2", CourseID: "B", Event: core.EventDislike},
		core.Interaction{UserID: "u3", CourseID: "B", Event: core.EventDislike},
	)

	hot := &Hot{Log: log, Catalog: hotCatalog()}
	scores, err := hot.Scores(context.Background())
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores["B"] != 0 {
		t.Errorf("score(B) = %v, dislikes must not add popularity", scores["B"])
	}
	if scores["A"] != 1.0 {
		t.Errorf("score(A) = %v, want 1.0", scores["A"])
	}
}

func TestHotRecallOrderDeterministic(t *testing.T) {
	log := store.NewInteractionLog()
	record(t, log,
		core.Interaction{UserID: "u1", CourseID: "B", Event: core.EventView},
		core.Interaction{UserID: "u2", CourseID: "A", Event: core.EventView},
	)

	hot := &Hot{Log: log, Catalog: hotCatalog(), TopK: 10}
	items, err := hot.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// equal popularity: ties fall back to courseId ascending
	if items[0].ID != "A" || items[1].ID != "B" {
		t.Errorf("order = %s, %s, want A, B", items[0].ID, items[1].ID)
	}
	if items[0].Explanations[0] != "popular among learners" {
		t.Errorf("explanation = %v", items[0].Explanations)
	}
}

func TestHotStoreBackedScores(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()

	log := store.NewInteractionLog()
	record(t, log,
		core.Interaction{UserID: "u1", CourseID: "A", Event: core.EventComplete},
		core.Interaction{UserID: "u1", CourseID: "B", Event: core.EventView},
	)

	hot := &Hot{Log: log, Catalog: hotCatalog(), Store: mem, Key: "hot:test"}
	if err := hot.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// a second instance sharing only the store sees the same ranking
	reader := &Hot{Catalog: hotCatalog(), Store: mem, Key: "hot:test"}
	scores, err := reader.Scores(ctx)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores["A"] != 1.0 {
		t.Errorf("score(A) = %v, want 1.0 from store-backed path", scores["A"])
	}
	if scores["B"] <= 0 || scores["B"] >= 1.0 {
		t.Errorf("score(B) = %v, want in (0, 1)", scores["B"])
	}
}
