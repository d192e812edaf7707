package feature

import (
	"context"
	"testing"

	"github.com/rushteam/edurec/core"
)

func testCatalog() *core.Catalog {
	return core.NewCatalog([]core.Course{
		{ID: "c1", Title: "Python Basics", Description: "Learn python", SkillTags: []string{"python"}, Difficulty: "beginner", Duration: "short", Category: "programming"},
		{ID: "c2", Title: "SQL Fundamentals", Difficulty: "beginner", Category: "data engineering"},
	})
}

func TestCourseEnrichDefaults(t *testing.T) {
	node := &CourseEnrich{Catalog: testCatalog()}
	items := []*core.Item{core.NewItem("c1")}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "alice"}, items)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	meta := out[0].Meta
	if meta["title"] != "Python Basics" || meta["category"] != "programming" {
		t.Errorf("meta = %v", meta)
	}
	if meta["difficulty"] != "beginner" || meta["duration"] != "short" {
		t.Errorf("meta = %v", meta)
	}
	// description 不在默认字段里
	if _, ok := meta["description"]; ok {
		t.Error("description should not be injected by default")
	}
}

func TestCourseEnrichSelectedFields(t *testing.T) {
	node := &CourseEnrich{Catalog: testCatalog(), Fields: []string{"title", "description"}}
	items := []*core.Item{core.NewItem("c1")}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "alice"}, items)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	meta := out[0].Meta
	if meta["title"] != "Python Basics" || meta["description"] != "Learn python" {
		t.Errorf("meta = %v", meta)
	}
	if _, ok := meta["category"]; ok {
		t.Error("category was not requested")
	}
}

func TestCourseEnrichUnknownCourse(t *testing.T) {
	node := &CourseEnrich{Catalog: testCatalog()}
	items := []*core.Item{core.NewItem("ghost")}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "alice"}, items)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out[0].Meta) != 0 {
		t.Errorf("unknown course must stay untouched, meta = %v", out[0].Meta)
	}
}
