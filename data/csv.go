// Package data 提供课程目录与交互历史的 CSV 加载。
// 服务启动前一次性加载进内存，服务期间不再读文件。
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/edurec/core"
)

// normalizeHeader 把表头规范化为小写无分隔形态，
// 兼容 skill_tags / skillTags / Skill Tags 等写法。
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "-", "")
	return h
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func field(record []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if i, ok := idx[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
	}
	return ""
}

// LoadCourses 从 CSV 文件加载课程目录。
// 必需列：courseId、title；其余列可缺省。
// skillTags 列为逗号或分号分隔的标签列表。
func LoadCourses(path string) ([]core.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCourses(f)
}

// ReadCourses 从 io.Reader 加载课程目录（第一行为表头）。
func ReadCourses(r io.Reader) ([]core.Course, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("data: read course header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx["courseid"]; !ok {
		if _, ok := idx["id"]; !ok {
			return nil, fmt.Errorf("data: course csv missing courseId column")
		}
	}

	var out []core.Course
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: read course row: %w", err)
		}

		c := core.Course{
			ID:          field(record, idx, "courseid", "id"),
			Title:       field(record, idx, "title", "name"),
			Description: field(record, idx, "description", "desc"),
			Difficulty:  strings.ToLower(field(record, idx, "difficulty", "level", "skilllevel")),
			Duration:    field(record, idx, "duration"),
			Category:    field(record, idx, "category", "domain"),
		}
		if c.ID == "" {
			continue
		}
		if tags := field(record, idx, "skilltags", "tags", "skills"); tags != "" {
			c.SkillTags = splitTags(tags)
		}
		out = append(out, c)
	}
	return out, nil
}

func splitTags(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadInteractions 从 CSV 文件加载交互历史。
// 必需列：userId、courseId、eventType；timestamp/rating 可缺省。
// 事件类型非法的行直接丢弃，不中断加载。
func LoadInteractions(path string) ([]core.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadInteractions(f)
}

// ReadInteractions 从 io.Reader 加载交互历史（第一行为表头）。
func ReadInteractions(r io.Reader) ([]core.Interaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("data: read interaction header: %w", err)
	}
	idx := headerIndex(header)

	var out []core.Interaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: read interaction row: %w", err)
		}

		in := core.Interaction{
			UserID:   field(record, idx, "userid", "user"),
			CourseID: field(record, idx, "courseid", "course"),
			Event:    core.EventType(strings.ToLower(field(record, idx, "eventtype", "event", "action"))),
		}
		if in.UserID == "" || in.CourseID == "" || !core.ValidEvent(in.Event) {
			continue
		}
		if ts := field(record, idx, "timestamp", "time"); ts != "" {
			in.Timestamp = parseTimestamp(ts)
		}
		if rating := field(record, idx, "rating", "score"); rating != "" {
			if v, err := strconv.ParseFloat(rating, 64); err == nil {
				in.Rating = v
			}
		}
		out = append(out, in)
	}
	return out, nil
}

// parseTimestamp 解析 Unix 秒或 RFC3339 两种格式；解析失败返回零值。
func parseTimestamp(s string) time.Time {
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
