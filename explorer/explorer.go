// Package explorer 组合上游数据与本地状态，生成列表、收藏与已删除视图。
package explorer

import (
	"context"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/favorites"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/rickmorty"
	"github.com/ceyewan/portalgun/softdelete"
)

// Source 上游角色数据，*rickmorty.Client 实现了它
type Source interface {
	Characters(ctx context.Context, page int, filter rickmorty.Filter) (*model.CharacterPage, error)
	Character(ctx context.Context, id model.CharacterID) (*model.Character, error)
	CharactersByIDs(ctx context.Context, ids []model.CharacterID) ([]model.CharacterBasic, error)
	CharactersByIDsREST(ctx context.Context, ids []model.CharacterID) ([]model.DeletedCharacter, error)
}

var _ Source = (*rickmorty.Client)(nil)

// Option 选项
type Option func(*Explorer)

// WithLogger 注入日志记录器，追加 explorer 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(e *Explorer) {
		if logger != nil {
			e.logger = logger.WithNamespace("explorer")
		}
	}
}

// Explorer 角色浏览
type Explorer struct {
	src       Source
	favorites *favorites.Service
	deleted   *softdelete.Service
	logger    clog.Logger
}

func New(src Source, favs *favorites.Service, deleted *softdelete.Service, opts ...Option) (*Explorer, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if favs == nil || deleted == nil {
		return nil, ErrNilStore
	}
	e := &Explorer{src: src, favorites: favs, deleted: deleted, logger: clog.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ListResult 列表视图
type ListResult struct {
	Info    model.PageInfo         `json:"info"`
	Starred []model.CharacterBasic `json:"starred"`
	Regular []model.CharacterBasic `json:"regular"`
	Total   int                    `json:"total"`
}

// List 查询一页角色，去掉已删除的，按需排序后分成收藏与其他两组
func (e *Explorer) List(ctx context.Context, f Filters) (*ListResult, error) {
	page, err := e.src.Characters(ctx, f.Page, f.APIFilter())
	if err != nil {
		return nil, err
	}

	chars := FilterDeleted(page.Results, e.deleted.Set())
	if f.SortBy != SortNone {
		chars = SortByName(chars, f.SortBy)
	}

	favs := e.favorites.Set()
	res := &ListResult{
		Info:    page.Info,
		Starred: []model.CharacterBasic{},
		Regular: []model.CharacterBasic{},
	}
	showStarred := f.CharacterType != TypeOthers
	showRegular := f.CharacterType != TypeStarred
	for _, ch := range chars {
		starred := favs.Has(ch.ID)
		switch {
		case starred && showStarred:
			res.Starred = append(res.Starred, ch)
		case !starred && showRegular:
			res.Regular = append(res.Regular, ch)
		}
	}
	res.Total = len(res.Starred) + len(res.Regular)
	return res, nil
}

// Detail 角色详情及其本地状态
type Detail struct {
	*model.Character
	Favorite bool `json:"favorite"`
	Deleted  bool `json:"deleted"`
}

func (e *Explorer) Character(ctx context.Context, id model.CharacterID) (*Detail, error) {
	ch, err := e.src.Character(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Character: ch,
		Favorite:  e.favorites.IsFavorite(id),
		Deleted:   e.deleted.IsDeleted(id),
	}, nil
}

// Favorites 收藏视图，已删除的收藏不展示
func (e *Explorer) Favorites(ctx context.Context) ([]model.CharacterBasic, error) {
	ids := e.favorites.Set().Difference(e.deleted.Set()).Slice()
	if len(ids) == 0 {
		return []model.CharacterBasic{}, nil
	}
	return e.src.CharactersByIDs(ctx, ids)
}

// Deleted 已删除视图。上游失败时降级为空列表。
func (e *Explorer) Deleted(ctx context.Context) []model.DeletedCharacter {
	ids := e.deleted.IDs()
	if len(ids) == 0 {
		return []model.DeletedCharacter{}
	}
	chars, err := e.src.CharactersByIDsREST(ctx, ids)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to load deleted characters",
			clog.Int("count", len(ids)), clog.Error(err))
		return []model.DeletedCharacter{}
	}
	return chars
}

// Restore 恢复单个角色，不影响收藏
func (e *Explorer) Restore(ctx context.Context, id model.CharacterID) {
	e.deleted.Restore(ctx, id)
}

// RestoreAll 恢复全部，返回恢复数量
func (e *Explorer) RestoreAll(ctx context.Context) int {
	return e.deleted.RestoreAll(ctx)
}
