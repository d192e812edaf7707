package filter

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// CatalogFilter 过滤掉不在课程目录中的候选。
// 召回源的数据可能来自外部存储（如预计算的热门榜单），
// 目录守卫保证最终输出永远引用有效课程。
type CatalogFilter struct {
	Catalog *core.Catalog
}

func (f *CatalogFilter) Name() string {
	return "filter.catalog"
}

func (f *CatalogFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Catalog == nil {
		return false, nil
	}
	return !f.Catalog.Has(item.ID), nil
}
