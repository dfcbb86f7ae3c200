package rickmorty

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/xerrors"
)

const basicFields = `id name image species status gender`

const queryCharacters = `query GetCharacters($page: Int!, $filter: FilterCharacter) {
  characters(page: $page, filter: $filter) {
    info { count pages next prev }
    results { ` + basicFields + ` }
  }
}`

const queryCharacter = `query GetCharacterById($id: ID!) {
  character(id: $id) {
    id name status species type gender
    origin { name dimension }
    location { name dimension }
    image
    episode { id name episode }
    created
  }
}`

const queryCharactersByIDs = `query GetCharactersByIds($ids: [ID!]!) {
  charactersByIds(ids: $ids) { ` + basicFields + ` }
}`

// Filter 列表筛选条件，空字段不参与筛选
type Filter struct {
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty"`
	Species string `json:"species,omitempty"`
	Type    string `json:"type,omitempty"`
	Gender  string `json:"gender,omitempty"`
}

type gqlRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) graphql(ctx context.Context, op, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(gqlRequest{OperationName: op, Query: query, Variables: vars})
	if err != nil {
		return xerrors.Wrap(err, "rickmorty: encode graphql request")
	}
	body, err := c.do(ctx, op, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLEndpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}

	var resp gqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return xerrors.Wrap(err, "rickmorty: decode graphql response")
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return &GraphQLError{Messages: msgs}
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return xerrors.Wrap(err, "rickmorty: decode graphql data")
	}
	return nil
}

// Characters 查询一页角色，page 从 1 开始，小于 1 按 1 处理
func (c *Client) Characters(ctx context.Context, page int, filter Filter) (*model.CharacterPage, error) {
	if page < 1 {
		page = 1
	}
	var data struct {
		Characters *model.CharacterPage `json:"characters"`
	}
	err := c.graphql(ctx, "GetCharacters", queryCharacters, map[string]any{
		"page":   page,
		"filter": filter,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Characters == nil {
		return &model.CharacterPage{Results: []model.CharacterBasic{}}, nil
	}
	if data.Characters.Results == nil {
		data.Characters.Results = []model.CharacterBasic{}
	}
	return data.Characters, nil
}

// Character 查询角色详情，不存在时返回 ErrCharacterNotFound
func (c *Client) Character(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	if id == "" {
		return nil, xerrors.Wrap(model.ErrEmptyID, "rickmorty: character")
	}
	var data struct {
		Character *model.Character `json:"character"`
	}
	if err := c.graphql(ctx, "GetCharacterById", queryCharacter, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Character == nil {
		return nil, xerrors.Wrapf(ErrCharacterNotFound, "id %s", id)
	}
	data.Character.Episode = c.validEpisodes(ctx, id, data.Character.Episode)
	return data.Character, nil
}

// validEpisodes 丢弃缺少 id 的剧集条目，结果非 nil
func (c *Client) validEpisodes(ctx context.Context, characterID model.CharacterID, eps []model.Episode) []model.Episode {
	out := make([]model.Episode, 0, len(eps))
	for _, ep := range eps {
		epID, err := model.NewEpisodeID(strings.TrimSpace(ep.ID.String()))
		if err != nil {
			c.logger.WarnContext(ctx, "dropping episode without id",
				clog.String("character", characterID.String()),
				clog.String("episode", ep.Episode),
				clog.Error(err))
			continue
		}
		ep.ID = epID
		out = append(out, ep)
	}
	return out
}

// CharactersByIDs 批量查询精简角色，ids 为空时不发请求。
// 上游对不存在的 ID 返回 null，这些条目会被跳过。
func (c *Client) CharactersByIDs(ctx context.Context, ids []model.CharacterID) ([]model.CharacterBasic, error) {
	if len(ids) == 0 {
		return []model.CharacterBasic{}, nil
	}
	var data struct {
		CharactersByIDs []*model.CharacterBasic `json:"charactersByIds"`
	}
	if err := c.graphql(ctx, "GetCharactersByIds", queryCharactersByIDs, map[string]any{"ids": ids}, &data); err != nil {
		return nil, err
	}
	out := make([]model.CharacterBasic, 0, len(data.CharactersByIDs))
	for _, ch := range data.CharactersByIDs {
		if ch != nil {
			out = append(out, *ch)
		}
	}
	return out, nil
}
