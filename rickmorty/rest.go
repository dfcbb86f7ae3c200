package rickmorty

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/xerrors"
)

// restCharacter REST 接口的角色，id 是数字
type restCharacter struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	Image   string      `json:"image"`
	Species string      `json:"species"`
}

func (r restCharacter) toModel() model.DeletedCharacter {
	return model.DeletedCharacter{
		ID:      model.CharacterID(r.ID.String()),
		Name:    r.Name,
		Image:   r.Image,
		Species: r.Species,
	}
}

// CharactersByIDsREST 通过 REST 批量查询角色。
// 单个 ID 时上游返回对象，多个时返回数组，这里统一成切片。
func (c *Client) CharactersByIDsREST(ctx context.Context, ids []model.CharacterID) ([]model.DeletedCharacter, error) {
	if len(ids) == 0 {
		return []model.DeletedCharacter{}, nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	url := strings.TrimRight(c.cfg.RESTEndpoint, "/") + "/character/" + strings.Join(parts, ",")

	body, err := c.do(ctx, "GetCharactersREST", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeREST(body)
}

func decodeREST(body []byte) ([]model.DeletedCharacter, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.DeletedCharacter{}, nil
	}

	var list []restCharacter
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, xerrors.Wrap(err, "rickmorty: decode rest response")
		}
	} else {
		var one restCharacter
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, xerrors.Wrap(err, "rickmorty: decode rest response")
		}
		list = []restCharacter{one}
	}

	out := make([]model.DeletedCharacter, 0, len(list))
	for _, r := range list {
		if r.ID == "" {
			continue
		}
		out = append(out, r.toModel())
	}
	return out, nil
}
