package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/edurec/core"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name string
		n    int
		in   []*core.Item
		want int
	}{
		{name: "truncate", n: 2, in: items("a", "b", "c"), want: 2},
		{name: "fewer than n", n: 5, in: items("a", "b"), want: 2},
		{name: "zero keeps all", n: 0, in: items("a", "b", "c"), want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TopNNode{N: tt.n}
			out, err := node.Process(context.Background(), nil, tt.in)
			if err != nil {
				t.Fatalf("process: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("got %d items, want %d", len(out), tt.want)
			}
		})
	}
}

func TestDiversityByCatalogCategory(t *testing.T) {
	catalog := core.NewCatalog([]core.Course{
		{ID: "a", Title: "A", Category: "programming"},
		{ID: "b", Title: "B", Category: "programming"},
		{ID: "c", Title: "C", Category: "data science"},
		{ID: "d", Title: "D"}, // no category: exempt from the cap
	})
	node := &Diversity{Catalog: catalog}

	out, err := node.Process(context.Background(), nil, items("a", "b", "c", "d"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	// b is the second programming course and gets dropped; relative order kept
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "c" || out[2].ID != "d" {
		t.Errorf("order = %s, %s, %s, want a, c, d", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestDiversityMaxPerCategory(t *testing.T) {
	catalog := core.NewCatalog([]core.Course{
		{ID: "a", Title: "A", Category: "programming"},
		{ID: "b", Title: "B", Category: "programming"},
		{ID: "c", Title: "C", Category: "programming"},
	})
	node := &Diversity{Catalog: catalog, MaxPerCategory: 2}

	out, err := node.Process(context.Background(), nil, items("a", "b", "c"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d items, want 2 per category cap", len(out))
	}
}
