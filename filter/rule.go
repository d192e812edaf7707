package filter

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/dsl"
)

// RuleFilter 是规则过滤器：表达式命中的候选被移除。
// 表达式在构造时编译一次（CEL），语法错误视为配置错误。
//
// 示例：
//   - `item.difficulty == "advanced"` → 过滤高难度课程
//   - `item.duration == "long" && item.score < 0.3` → 过滤低分长课程
type RuleFilter struct {
	// Catalog 可选；提供后表达式可访问课程元数据
	// （item.category / item.difficulty / item.skill_tags 等）
	Catalog *core.Catalog

	program *dsl.Program
}

// NewRuleFilter 编译表达式并创建规则过滤器。
// 编译失败返回 INVALID_INPUT 领域错误。
func NewRuleFilter(expr string, catalog *core.Catalog) (*RuleFilter, error) {
	program, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "filter: "+err.Error())
	}
	return &RuleFilter{Catalog: catalog, program: program}, nil
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	var course *core.Course
	if f.Catalog != nil {
		course, _ = f.Catalog.Get(item.ID)
	}
	matched, err := f.program.Eval(item, course, rctx)
	if err != nil {
		// 表达式运行期错误（如访问缺失的 key）不中断链路，保留该候选
		return false, nil
	}
	return matched, nil
}
