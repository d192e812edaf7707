package recall

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// 兴趣规则各匹配分量的基础权重。
// 画像中缺省的字段视为通配：该分量跳过，剩余权重按比例放大，
// 保证“全部命中”的课程恒为满分 1.0。
const (
	interestWeightTags      = 0.5
	interestWeightDomain    = 0.2
	interestWeightSubdomain = 0.15
	interestWeightLevel     = 0.15
)

// InterestRecall 是兴趣规则召回源：不依赖任何交互历史，
// 用自述画像（兴趣词/领域/子领域/经验水平）对课程目录做规则匹配。
// 它是全新用户冷启动的主要信号来源。
//
// 同分课程按热度降序、再按课程 ID 升序排列；
// Hot 为 nil 时热度视为 0，退化为纯 ID 排序。
type InterestRecall struct {
	Catalog *core.Catalog

	// Hot 可选，仅用于同分时的热度 tie-break
	Hot *Hot

	// TopK 返回 TopK 个课程，默认 20
	TopK int
}

func (r *InterestRecall) Name() string { return "recall.interest" }

func (r *InterestRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil {
		return nil, nil
	}
	profile := rctx.GetProfile()
	if profile.IsEmpty() {
		return nil, nil
	}

	var popularity map[string]float64
	if r.Hot != nil {
		// 热度只做 tie-break，取失败时静默退化
		if scores, err := r.Hot.Scores(ctx); err == nil {
			popularity = scores
		}
	}

	interests := profile.NormalizedInterests()
	domain := strings.ToLower(strings.TrimSpace(profile.Domain))
	subdomain := strings.ToLower(strings.TrimSpace(profile.Subdomain))
	level := strings.ToLower(strings.TrimSpace(profile.ExperienceLevel))

	type scored struct {
		id      string
		score   float64
		matched []string
	}
	candidates := make([]scored, 0, r.Catalog.Len())

	for _, course := range r.Catalog.All() {
		text := strings.ToLower(course.CombinedText())
		tags := normalizedTagSet(course.SkillTags)

		var score, weightSum float64
		var matched []string

		if len(interests) > 0 {
			weightSum += interestWeightTags
			matched = matchInterests(interests, tags, text)
			if len(matched) > 0 {
				score += interestWeightTags * float64(len(matched)) / float64(len(interests))
			}
		}

		if domain != "" {
			weightSum += interestWeightDomain
			if fieldMatches(domain, strings.ToLower(course.Category), tags, text) {
				score += interestWeightDomain
			}
		}
		if subdomain != "" {
			weightSum += interestWeightSubdomain
			if fieldMatches(subdomain, strings.ToLower(course.Category), tags, text) {
				score += interestWeightSubdomain
			}
		}
		if level != "" {
			weightSum += interestWeightLevel
			score += interestWeightLevel * levelCompatibility(level, strings.ToLower(course.Difficulty))
		}

		if weightSum == 0 || score <= 0 {
			continue
		}
		candidates = append(candidates, scored{
			id:      course.ID,
			score:   score / weightSum,
			matched: matched,
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		pi, pj := popularity[candidates[i].id], popularity[candidates[j].id]
		if pi != pj {
			return pi > pj
		}
		return candidates[i].id < candidates[j].id
	})

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		it := core.NewItem(c.id)
		it.Score = c.score
		if len(c.matched) > 0 {
			it.AddExplanation("matched interests: " + strings.Join(c.matched, ", "))
		}
		it.PutLabel("recall_source", utils.Label{Value: "interest", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

func normalizedTagSet(tags []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

// matchInterests 返回命中的兴趣词（保持画像中的顺序）。
// 命中 = 精确命中技能标签，或作为子串出现在课程文本中。
func matchInterests(interests []string, tags map[string]struct{}, text string) []string {
	matched := make([]string, 0, len(interests))
	for _, term := range interests {
		if _, ok := tags[term]; ok {
			matched = append(matched, term)
			continue
		}
		if strings.Contains(text, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// fieldMatches 判断领域/子领域是否命中课程：
// 与类别互为子串，或精确命中标签，或作为子串出现在课程文本中。
func fieldMatches(field, category string, tags map[string]struct{}, text string) bool {
	if field == "" {
		return false
	}
	if category != "" && (strings.Contains(category, field) || strings.Contains(field, category)) {
		return true
	}
	if _, ok := tags[field]; ok {
		return true
	}
	return strings.Contains(text, field)
}

// levelCompatibility 计算经验水平与课程难度的兼容度：
// 相同 1.0，相邻 0.5，相距两级 0。未知取值按中间档处理。
func levelCompatibility(level, difficulty string) float64 {
	rank := func(v string) int {
		switch v {
		case core.DifficultyBeginner:
			return 0
		case core.DifficultyIntermediate:
			return 1
		case core.DifficultyAdvanced:
			return 2
		default:
			return 1
		}
	}
	gap := rank(level) - rank(difficulty)
	if gap < 0 {
		gap = -gap
	}
	switch gap {
	case 0:
		return 1.0
	case 1:
		return 0.5
	default:
		return 0
	}
}
