package core

// RecommendContext 承载一次推荐请求的用户/画像/参数信息，贯穿整个链路透传。
// UserID 与 Profile 至少其一有效：
//   - 已知用户：UserID 非空，Profile 可选（有画像则兴趣规则源参与融合）
//   - 临时画像请求：UserID 为空，Profile 非空（冷启动路径）
type RecommendContext struct {
	UserID string

	// Profile 是强类型兴趣画像
	Profile *InterestProfile

	// Params 请求级上下文参数（如 "interests"、"domain"、"experience_level"），
	// 用于快速原型或动态属性。如果 Profile 不为空，优先使用 Profile。
	Params map[string]any
}

// GetProfile 获取兴趣画像。
// 优先返回强类型 Profile，为空时从 Params 构建；两者都没有则返回 nil。
func (rctx *RecommendContext) GetProfile() *InterestProfile {
	if rctx == nil {
		return nil
	}
	if rctx.Profile != nil {
		return rctx.Profile
	}
	if rctx.Params == nil {
		return nil
	}
	p := &InterestProfile{}
	if interests, ok := rctx.Params["interests"].([]string); ok {
		p.Interests = interests
	} else if raw, ok := rctx.Params["interests"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				p.Interests = append(p.Interests, s)
			}
		}
	}
	if domain, ok := rctx.Params["domain"].(string); ok {
		p.Domain = domain
	}
	if sub, ok := rctx.Params["subdomain"].(string); ok {
		p.Subdomain = sub
	}
	if lvl, ok := rctx.Params["experience_level"].(string); ok {
		p.ExperienceLevel = lvl
	}
	if p.IsEmpty() {
		return nil
	}
	return p
}
