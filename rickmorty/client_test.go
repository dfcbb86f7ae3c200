package rickmorty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/model"
	"github.com/ceyewan/portalgun/xerrors"
)

func testConfig(url string) *Config {
	return &Config{
		GraphQLEndpoint: url + "/graphql",
		RESTEndpoint:    url + "/api",
		Timeout:         time.Second,
		RateLimit:       -1,
		Retry: RetryConfig{
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxAttempts:     3,
		},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)
	return c, srv
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func decodeGQL(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultGraphQLEndpoint, cfg.GraphQLEndpoint)
	assert.Equal(t, DefaultRESTEndpoint, cfg.RESTEndpoint)
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialInterval)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxInterval)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 0.5, cfg.Retry.Jitter)

	_, err := New(&Config{Retry: RetryConfig{Jitter: 2}})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	_, err = New(&Config{Retry: RetryConfig{MaxAttempts: -1}})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCharacters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		req := decodeGQL(t, r)
		assert.Equal(t, "GetCharacters", req.OperationName)
		assert.Equal(t, float64(2), req.Variables["page"])
		assert.Equal(t, map[string]any{"name": "rick", "status": "Alive"}, req.Variables["filter"])

		_, _ = w.Write([]byte(`{"data":{"characters":{
			"info":{"count":29,"pages":2,"next":null,"prev":1},
			"results":[{"id":"1","name":"Rick Sanchez","image":"r.jpeg","species":"Human","status":"Alive","gender":"Male"}]}}}`))
	})

	page, err := c.Characters(ctxT(t), 2, Filter{Name: "rick", Status: "Alive"})
	require.NoError(t, err)
	assert.Equal(t, 29, page.Info.Count)
	assert.Nil(t, page.Info.Next)
	require.NotNil(t, page.Info.Prev)
	assert.Equal(t, 1, *page.Info.Prev)
	require.Len(t, page.Results, 1)
	assert.Equal(t, model.CharacterID("1"), page.Results[0].ID)
	assert.Equal(t, model.StatusAlive, page.Results[0].Status)
}

func TestCharacters_NoResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, float64(1), decodeGQL(t, r).Variables["page"], "页码下限为 1")
		_, _ = w.Write([]byte(`{"data":{"characters":{"info":{"count":0,"pages":0},"results":null}}}`))
	})

	page, err := c.Characters(ctxT(t), 0, Filter{})
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}

func TestCharacter(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGQL(t, r)
		if req.Variables["id"] == "404" {
			_, _ = w.Write([]byte(`{"data":{"character":null}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"character":{
			"id":"2","name":"Morty Smith","status":"Alive","species":"Human","type":"","gender":"Male",
			"origin":{"name":"unknown","dimension":null},"location":{"name":"Citadel of Ricks","dimension":"unknown"},
			"image":"m.jpeg","episode":[{"id":"1","name":"Pilot","episode":"S01E01"}],"created":"2017-11-04T18:50:21.651Z"}}}`))
	})

	ch, err := c.Character(ctxT(t), "2")
	require.NoError(t, err)
	assert.Equal(t, "Morty Smith", ch.Name)
	assert.Equal(t, "Citadel of Ricks", ch.Location.Name)
	require.Len(t, ch.Episode, 1)
	assert.Equal(t, "S01E01", ch.Episode[0].Episode)

	_, err = c.Character(ctxT(t), "404")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = c.Character(ctxT(t), "")
	assert.ErrorIs(t, err, model.ErrEmptyID)
}

func TestCharacter_EpisodeIDs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"character":{"id":"1","name":"Rick Sanchez","episode":[
			{"id":" 1 ","name":"Pilot","episode":"S01E01"},
			{"id":"","name":"Broken","episode":"S99E99"},
			{"id":null,"name":"Missing","episode":"S99E98"},
			{"id":"2","name":"Lawnmower Dog","episode":"S01E02"}]}}}`))
	})

	ch, err := c.Character(ctxT(t), "1")
	require.NoError(t, err)
	require.Len(t, ch.Episode, 2)
	assert.Equal(t, model.EpisodeID("1"), ch.Episode[0].ID)
	assert.Equal(t, model.EpisodeID("2"), ch.Episode[1].ID)
}

func TestCharacter_NoEpisodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"character":{"id":"1","name":"Rick Sanchez","episode":null}}}`))
	})

	ch, err := c.Character(ctxT(t), "1")
	require.NoError(t, err)
	assert.NotNil(t, ch.Episode)
	assert.Empty(t, ch.Episode)
}

func TestCharactersByIDs(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		req := decodeGQL(t, r)
		assert.Equal(t, []any{"1", "999"}, req.Variables["ids"])
		_, _ = w.Write([]byte(`{"data":{"charactersByIds":[{"id":"1","name":"Rick Sanchez"},null]}}`))
	})

	got, err := c.CharactersByIDs(ctxT(t), []model.CharacterID{"1", "999"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rick Sanchez", got[0].Name)

	empty, err := c.CharactersByIDs(ctxT(t), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, int32(1), calls.Load(), "空 ID 列表不发请求")
}

func TestGraphQLErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Variable \"$page\" got invalid value"}],"data":null}`))
	})

	_, err := c.Characters(ctxT(t), 1, Filter{})
	assert.ErrorIs(t, err, ErrGraphQL)
	var gerr *GraphQLError
	require.ErrorAs(t, err, &gerr)
	assert.Len(t, gerr.Messages, 1)
}

func TestCharactersByIDsREST(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/character/1":
			_, _ = w.Write([]byte(`{"id":1,"name":"Rick Sanchez","image":"r.jpeg","species":"Human","status":"Alive"}`))
		case "/api/character/1,2":
			_, _ = w.Write([]byte(`[{"id":1,"name":"Rick Sanchez","species":"Human"},{"id":2,"name":"Morty Smith","species":"Human"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	t.Run("单个 ID 返回对象", func(t *testing.T) {
		got, err := c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"1"})
		require.NoError(t, err)
		assert.Equal(t, []model.DeletedCharacter{{ID: "1", Name: "Rick Sanchez", Image: "r.jpeg", Species: "Human"}}, got)
	})

	t.Run("多个 ID 返回数组", func(t *testing.T) {
		got, err := c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"1", "2"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, model.CharacterID("2"), got[1].ID)
	})

	t.Run("空列表不发请求", func(t *testing.T) {
		got, err := c.CharactersByIDsREST(ctxT(t), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRetry_On429ThenSuccess(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"name":"Abradolf Lincler"}`))
	})

	got, err := c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"7"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"1"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.ErrorIs(t, err, xerrors.ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_NotOn404(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Character not found"}`))
	})

	_, err := c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"99999"})
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Breaker = BreakerConfig{MinimumRequests: 2, FailureRatio: 0.5, Timeout: time.Minute}
	m, err := metrics.New(metrics.NewDevDefaultConfig("rickmorty-test"))
	require.NoError(t, err)
	c, err := New(cfg, WithMeter(m))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"1"})
		assert.ErrorIs(t, err, ErrBadStatus)
	}
	_, err = c.CharactersByIDsREST(ctxT(t), []model.CharacterID{"1"})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load(), "熔断后不再请求上游")
}

func TestContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CharactersByIDsREST(ctx, []model.CharacterID{"1"})
	assert.ErrorIs(t, err, context.Canceled)
}
