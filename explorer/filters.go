package explorer

import (
	"net/url"
	"strconv"

	"github.com/ceyewan/portalgun/rickmorty"
)

// SortOption 名称排序方式
type SortOption string

const (
	SortNone     SortOption = ""
	SortNameAsc  SortOption = "name-asc"
	SortNameDesc SortOption = "name-desc"
)

// CharacterType 按收藏状态筛选
type CharacterType string

const (
	TypeAll     CharacterType = "all"
	TypeStarred CharacterType = "starred"
	TypeOthers  CharacterType = "others"
)

// 查询参数名
const (
	ParamPage          = "page"
	ParamName          = "name"
	ParamStatus        = "status"
	ParamSpecies       = "species"
	ParamGender        = "gender"
	ParamSortBy        = "sortBy"
	ParamCharacterType = "characterType"
)

// Filters 列表视图的筛选状态，可与 URL 查询参数互相转换
type Filters struct {
	Page          int           `json:"page"`
	Name          string        `json:"name,omitempty"`
	Status        string        `json:"status,omitempty"`
	Species       string        `json:"species,omitempty"`
	Gender        string        `json:"gender,omitempty"`
	SortBy        SortOption    `json:"sortBy,omitempty"`
	CharacterType CharacterType `json:"characterType"`
}

// Patch 局部更新，nil 字段保持不变，空字符串表示清除
type Patch struct {
	Page          *int
	Name          *string
	Status        *string
	Species       *string
	Gender        *string
	SortBy        *SortOption
	CharacterType *CharacterType
}

// DefaultFilters 第一页，不筛选
func DefaultFilters() Filters {
	return Filters{Page: 1, CharacterType: TypeAll}
}

// ParseFilters 从查询参数解析，非法值回落到默认值
func ParseFilters(v url.Values) Filters {
	f := DefaultFilters()
	if p, err := strconv.Atoi(v.Get(ParamPage)); err == nil && p > 0 {
		f.Page = p
	}
	f.Name = v.Get(ParamName)
	f.Status = v.Get(ParamStatus)
	f.Species = v.Get(ParamSpecies)
	f.Gender = v.Get(ParamGender)
	f.SortBy = parseSort(v.Get(ParamSortBy))
	f.CharacterType = parseType(v.Get(ParamCharacterType))
	return f
}

func parseSort(s string) SortOption {
	switch o := SortOption(s); o {
	case SortNameAsc, SortNameDesc:
		return o
	}
	return SortNone
}

func parseType(s string) CharacterType {
	switch t := CharacterType(s); t {
	case TypeStarred, TypeOthers:
		return t
	}
	return TypeAll
}

// Values 转回查询参数，默认值不输出
func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(f.Page))
	}
	setIf := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	setIf(ParamName, f.Name)
	setIf(ParamStatus, f.Status)
	setIf(ParamSpecies, f.Species)
	setIf(ParamGender, f.Gender)
	setIf(ParamSortBy, string(f.SortBy))
	if f.CharacterType != TypeAll {
		setIf(ParamCharacterType, string(f.CharacterType))
	}
	return v
}

// Update 应用局部更新。只要修改了页码以外的字段，页码就回到 1。
func (f Filters) Update(p Patch) Filters {
	if p.Name != nil || p.Status != nil || p.Species != nil || p.Gender != nil ||
		p.SortBy != nil || p.CharacterType != nil {
		f.Page = 1
	}
	if p.Page != nil {
		f.Page = *p.Page
		if f.Page < 1 {
			f.Page = 1
		}
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Species != nil {
		f.Species = *p.Species
	}
	if p.Gender != nil {
		f.Gender = *p.Gender
	}
	if p.SortBy != nil {
		f.SortBy = parseSort(string(*p.SortBy))
	}
	if p.CharacterType != nil {
		f.CharacterType = parseType(string(*p.CharacterType))
	}
	return f
}

// Reset 清空所有筛选
func (f Filters) Reset() Filters { return DefaultFilters() }

// ActiveCount 生效的筛选数。名称搜索与排序不计入。
func (f Filters) ActiveCount() int {
	n := 0
	for _, s := range []string{f.Status, f.Species, f.Gender} {
		if s != "" {
			n++
		}
	}
	if f.CharacterType != "" && f.CharacterType != TypeAll {
		n++
	}
	return n
}

// NextSort 排序按钮的下一个状态：不排序 → 升序 → 降序 → 不排序
func (f Filters) NextSort() SortOption {
	switch f.SortBy {
	case SortNone:
		return SortNameAsc
	case SortNameAsc:
		return SortNameDesc
	default:
		return SortNone
	}
}

// APIFilter 上游支持的筛选字段
func (f Filters) APIFilter() rickmorty.Filter {
	return rickmorty.Filter{
		Name:    f.Name,
		Status:  f.Status,
		Species: f.Species,
		Gender:  f.Gender,
	}
}
