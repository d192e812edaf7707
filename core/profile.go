package core

import "strings"

// InterestProfile 是用户自述的兴趣画像：兴趣词、领域、子领域、经验水平。
// 它独立于交互历史，是全新用户冷启动的主要信号来源。
// 所有字段均可缺省；缺省字段视为通配（不加分也不减分）。
type InterestProfile struct {
	Interests       []string // 兴趣/技能词，保序
	Domain          string   // 目标领域，如 "data science"
	Subdomain       string   // 子领域，如 "machine learning"
	ExperienceLevel string   // beginner / intermediate / advanced
}

// IsEmpty 判断画像是否完全为空（没有任何可用信号）。
func (p *InterestProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Interests) == 0 && p.Domain == "" && p.Subdomain == "" && p.ExperienceLevel == ""
}

// NormalizedInterests 返回小写、去空格、去重后的兴趣词（保序）。
func (p *InterestProfile) NormalizedInterests() []string {
	if p == nil || len(p.Interests) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(p.Interests))
	out := make([]string, 0, len(p.Interests))
	for _, raw := range p.Interests {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}
