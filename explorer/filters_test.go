package explorer

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ceyewan/portalgun/rickmorty"
)

func ptr[T any](v T) *T { return &v }

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Filters
	}{
		{"空查询", "", DefaultFilters()},
		{"完整参数", "page=3&name=rick&status=Alive&species=Human&gender=Male&sortBy=name-desc&characterType=starred",
			Filters{Page: 3, Name: "rick", Status: "Alive", Species: "Human", Gender: "Male", SortBy: SortNameDesc, CharacterType: TypeStarred}},
		{"非法页码", "page=abc", DefaultFilters()},
		{"负页码", "page=-2", DefaultFilters()},
		{"非法排序与类型", "sortBy=age&characterType=robots", DefaultFilters()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseFilters(v))
		})
	}
}

func TestFilters_ValuesRoundTrip(t *testing.T) {
	f := Filters{Page: 2, Name: "morty", Gender: "Male", SortBy: SortNameAsc, CharacterType: TypeOthers}
	assert.Equal(t, f, ParseFilters(f.Values()))
	assert.Empty(t, DefaultFilters().Values(), "默认值不输出")
}

func TestFilters_Update(t *testing.T) {
	base := Filters{Page: 4, Name: "rick", Status: "Alive", CharacterType: TypeAll}

	t.Run("只改页码", func(t *testing.T) {
		got := base.Update(Patch{Page: ptr(5)})
		assert.Equal(t, 5, got.Page)
		assert.Equal(t, "rick", got.Name)
	})

	t.Run("改其他字段页码归一", func(t *testing.T) {
		got := base.Update(Patch{Species: ptr("Alien")})
		assert.Equal(t, 1, got.Page)
		assert.Equal(t, "Alien", got.Species)
		assert.Equal(t, "Alive", got.Status)
	})

	t.Run("空字符串清除", func(t *testing.T) {
		got := base.Update(Patch{Status: ptr("")})
		assert.Empty(t, got.Status)
		assert.Equal(t, 1, got.Page)
	})

	t.Run("原值不变", func(t *testing.T) {
		_ = base.Update(Patch{Name: ptr("summer")})
		assert.Equal(t, "rick", base.Name)
	})

	assert.Equal(t, DefaultFilters(), base.Reset())
}

func TestFilters_ActiveCount(t *testing.T) {
	assert.Zero(t, DefaultFilters().ActiveCount())
	assert.Zero(t, Filters{Name: "rick", SortBy: SortNameAsc, CharacterType: TypeAll}.ActiveCount())
	assert.Equal(t, 4, Filters{Status: "Dead", Species: "Human", Gender: "Female", CharacterType: TypeStarred}.ActiveCount())
}

func TestFilters_NextSort(t *testing.T) {
	f := DefaultFilters()
	var seen []SortOption
	for i := 0; i < 3; i++ {
		f.SortBy = f.NextSort()
		seen = append(seen, f.SortBy)
	}
	assert.Equal(t, []SortOption{SortNameAsc, SortNameDesc, SortNone}, seen)
}

func TestFilters_APIFilter(t *testing.T) {
	f := Filters{Page: 2, Name: "rick", Status: "Alive", SortBy: SortNameAsc, CharacterType: TypeStarred}
	assert.Equal(t, rickmorty.Filter{Name: "rick", Status: "Alive"}, f.APIFilter())
}
