// Package feature 提供候选的元数据注入：推荐链路内部只携带课程 ID 与分数，
// 出口前把展示所需的目录字段（标题/类别/难度等）补进 Item.Meta。
package feature

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pipeline"
)

// CourseEnrich 是元数据注入节点，通常放在链路末端。
// 目录中不存在的课程保持原样（目录守卫在融合阶段已经处理）。
type CourseEnrich struct {
	Catalog *core.Catalog

	// Fields 要注入的字段，为空时注入全部展示字段
	Fields []string
}

func (n *CourseEnrich) Name() string        { return "feature.enrich" }
func (n *CourseEnrich) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *CourseEnrich) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Catalog == nil || len(items) == 0 {
		return items, nil
	}

	fields := n.Fields
	if len(fields) == 0 {
		fields = []string{"title", "category", "difficulty", "duration", "skill_tags"}
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		course, ok := n.Catalog.Get(it.ID)
		if !ok {
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any)
		}
		for _, f := range fields {
			switch f {
			case "title":
				it.Meta["title"] = course.Title
			case "description":
				it.Meta["description"] = course.Description
			case "category":
				it.Meta["category"] = course.Category
			case "difficulty":
				it.Meta["difficulty"] = course.Difficulty
			case "duration":
				it.Meta["duration"] = course.Duration
			case "skill_tags":
				it.Meta["skill_tags"] = course.SkillTags
			}
		}
	}
	return items, nil
}
