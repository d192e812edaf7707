package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/edurec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Program 是编译后的规则表达式，使用 CEL (Common Expression Language) 实现。
// 表达式在构造时编译一次，之后可被多个请求并发 Eval。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "hot" / item.category != "programming"
//   - 数值：item.score > 0.7 / item.score >= 0.5
//   - 逻辑：item.difficulty == "beginner" && item.score > 0.8
//   - 存在性：label.recall_source != null
//   - 包含：label.recall_source.contains("hot")
//
// 示例：
//   - `item.difficulty != "advanced"` → 过滤高难度课程
//   - `label.recall_source.contains("hot") && item.score < 0.2` → 低分热门兜底项
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译规则表达式。语法错误在此同步暴露，
// 调用方应把编译失败视为配置错误并拒绝启动/构建。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("dsl: empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: env error: %v", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program error: %v", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式（用于日志/调试）。
func (p *Program) Expr() string { return p.expr }

// Eval 对单个候选执行表达式，返回布尔结果。
// course 可为 nil（表达式只访问 item 基础字段时）。
func (p *Program) Eval(item *core.Item, course *core.Course, rctx *core.RecommendContext) (bool, error) {
	if item == nil {
		return false, nil
	}

	out, _, err := p.prg.Eval(buildInput(item, course, rctx))
	if err != nil {
		// 访问不存在的 key 时 CEL 会报错；
		// 表达式应使用 label.key != null 检查存在性
		return false, fmt.Errorf("dsl: eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, course *core.Course, rctx *core.RecommendContext) map[string]interface{} {
	// 构建 label map
	labels := make(map[string]interface{})
	for k, v := range it.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
	}

	// 构建 item map；课程元数据展开为顶层字段方便表达式访问
	item := map[string]interface{}{
		"id":     it.ID,
		"score":  it.Score,
		"meta":   it.Meta,
		"labels": labels,
	}
	if course != nil {
		item["title"] = course.Title
		item["category"] = course.Category
		item["difficulty"] = course.Difficulty
		item["duration"] = course.Duration
		item["skill_tags"] = course.SkillTags
	}

	// 构建 rctx map
	rctxMap := map[string]interface{}{}
	if rctx != nil {
		rctxMap["user_id"] = rctx.UserID
		rctxMap["params"] = rctx.Params
		if p := rctx.GetProfile(); p != nil {
			rctxMap["profile"] = map[string]interface{}{
				"interests":        p.Interests,
				"domain":           p.Domain,
				"subdomain":        p.Subdomain,
				"experience_level": p.ExperienceLevel,
			}
		}
	}

	// label 提供顶层访问：label.recall_source 直接返回 value。
	// CEL 访问不存在的 key 会报错，使用 label.key != null 检查存在性
	labelAccessor := make(map[string]interface{})
	for k, v := range labels {
		labelAccessor[k] = v.(map[string]interface{})["value"]
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
