package explorer

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ceyewan/portalgun/model"
)

// SortByName 按名称做本地化排序，返回新切片。SortNone 时保持原顺序。
func SortByName(list []model.CharacterBasic, order SortOption) []model.CharacterBasic {
	out := slices.Clone(list)
	if order != SortNameAsc && order != SortNameDesc {
		return out
	}
	// Collator 不是并发安全的，每次排序单独创建
	c := collate.New(language.English, collate.Loose)
	slices.SortStableFunc(out, func(a, b model.CharacterBasic) int {
		cmp := c.CompareString(a.Name, b.Name)
		if order == SortNameDesc {
			return -cmp
		}
		return cmp
	})
	return out
}

// FilterDeleted 去掉已删除的角色，返回新切片
func FilterDeleted(list []model.CharacterBasic, deleted model.IDSet) []model.CharacterBasic {
	out := make([]model.CharacterBasic, 0, len(list))
	for _, ch := range list {
		if !deleted.Has(ch.ID) {
			out = append(out, ch)
		}
	}
	return out
}
