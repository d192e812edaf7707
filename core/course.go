package core

import (
	"sort"
	"strings"
)

// Difficulty 是课程难度等级。与 InterestProfile.ExperienceLevel 使用同一组取值。
type Difficulty = string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Course 是课程目录中的一条记录。
// 在数据加载阶段创建，服务期间只读（见 Catalog）。
type Course struct {
	ID          string
	Title       string
	Description string
	SkillTags   []string // 保序；存储格式为逗号分隔
	Difficulty  Difficulty
	Duration    string
	Category    string
}

// CombinedText 返回用于内容向量化的文本：title + description + skill_tags。
func (c *Course) CombinedText() string {
	parts := make([]string, 0, 3)
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if len(c.SkillTags) > 0 {
		parts = append(parts, strings.Join(c.SkillTags, " "))
	}
	return strings.Join(parts, " ")
}

// Catalog 是只读的课程目录：服务启动前加载完成，服务期间不再变化。
// 目录变化时应重建 Catalog 并重新 Fit 内容索引（见 textindex）。
type Catalog struct {
	courses map[string]*Course
	ids     []string // 按 ID 升序，保证遍历确定性
}

// NewCatalog 构建课程目录。重复 ID 以后出现的为准。
func NewCatalog(courses []Course) *Catalog {
	m := make(map[string]*Course, len(courses))
	for i := range courses {
		c := courses[i]
		if c.ID == "" {
			continue
		}
		m[c.ID] = &c
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Catalog{courses: m, ids: ids}
}

// Get 返回课程；未知 ID 返回 (nil, false)，不报错。
func (cat *Catalog) Get(id string) (*Course, bool) {
	c, ok := cat.courses[id]
	return c, ok
}

// Has 判断课程是否存在于目录中。
func (cat *Catalog) Has(id string) bool {
	_, ok := cat.courses[id]
	return ok
}

// IDs 返回目录中全部课程 ID（升序）。调用方不得修改返回的切片。
func (cat *Catalog) IDs() []string {
	return cat.ids
}

// All 按 ID 升序返回全部课程。
func (cat *Catalog) All() []*Course {
	out := make([]*Course, 0, len(cat.ids))
	for _, id := range cat.ids {
		out = append(out, cat.courses[id])
	}
	return out
}

// Len 返回课程数量。
func (cat *Catalog) Len() int {
	return len(cat.ids)
}

// TitleOf 返回课程标题；未知 ID 返回空串（用于解释文案的兜底）。
func (cat *Catalog) TitleOf(id string) string {
	if c, ok := cat.courses[id]; ok {
		return c.Title
	}
	return ""
}
