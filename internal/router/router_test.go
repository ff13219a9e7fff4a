package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcg-collection-api/internal/handler"
	"tcg-collection-api/internal/provider"
	"tcg-collection-api/internal/repository"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/internal/syncstate"
)

// upstream is a stand-in for the card-data API.
type upstream struct {
	failSets atomic.Bool
	server   *httptest.Server
}

var upstreamSets = []map[string]interface{}{
	{"id": "base1", "name": "Base", "series": "Base", "releaseDate": "1999/01/09", "total": 102},
	{"id": "sv1", "name": "Scarlet & Violet", "series": "Scarlet & Violet", "releaseDate": "2023/03/31"},
}

var upstreamCards = map[string][]map[string]interface{}{
	"base1": {
		{"id": "base1-3", "name": "Chansey", "number": "3", "rarity": "Rare Holo", "supertype": "Pokémon", "types": []string{"Colorless"}, "set": map[string]string{"id": "base1"}},
		{"id": "base1-1", "name": "Alakazam", "number": "1", "rarity": "Rare Holo", "supertype": "Pokémon", "types": []string{"Psychic"}, "set": map[string]string{"id": "base1"}},
		{"id": "base1-2", "name": "Blastoise", "number": "2", "rarity": "Rare Holo", "supertype": "Pokémon", "types": []string{"Water"}, "set": map[string]string{"id": "base1"}},
	},
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}

	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data interface{}
		switch r.URL.Path {
		case "/sets":
			if u.failSets.Load() {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			data = upstreamSets
		case "/cards":
			setID := strings.TrimPrefix(r.URL.Query().Get("q"), "set.id:")
			cards := upstreamCards[setID]
			if cards == nil {
				cards = []map[string]interface{}{}
			}
			data = cards
		default:
			http.NotFound(w, r)
			return
		}

		payload, _ := json.Marshal(data)
		var items []json.RawMessage
		_ = json.Unmarshal(payload, &items)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": items, "page": 1, "pageSize": 250, "count": len(items), "totalCount": len(items),
		})
	}))
	t.Cleanup(u.server.Close)
	return u
}

type testServer struct {
	upstream *upstream
	server   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.Migrate(context.Background()))

	up := newUpstream(t)
	client := provider.NewClient(provider.Config{BaseURL: up.server.URL})
	state := syncstate.NewMemoryStore()

	mux := New(Config{
		APIPrefix:         "/api",
		AllowedOrigins:    []string{"http://localhost:3000"},
		Handler:           handler.New(repo, "test"),
		CatalogHandler:    handler.NewCatalogHandler(service.NewCatalogService(repo)),
		CollectionHandler: handler.NewCollectionHandler(service.NewCollectionService(repo)),
		SyncHandler:       handler.NewSyncHandler(service.NewSyncService(repo, client, state)),
		AdminHandler:      handler.NewAdminHandler(repo, state),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{upstream: up, server: srv}
}

func (s *testServer) do(t *testing.T, method, path string) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, s.server.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&body)
	}
	return resp.StatusCode, body
}

func (s *testServer) sync(t *testing.T) {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/api/expansions/update/")
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/expansion/base1/cards/update")
	require.Equal(t, http.StatusOK, status)
}

func cardNumbers(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	cards, ok := body["cards"].([]interface{})
	require.True(t, ok, "cards must be a list")

	numbers := make([]string, 0, len(cards))
	for _, c := range cards {
		numbers = append(numbers, c.(map[string]interface{})["number"].(string))
	}
	return numbers
}

func TestExpansions_EmptyThenSynced(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/expansions/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{}, body["expansions"])

	status, body = s.do(t, http.MethodPost, "/api/expansions/update/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Expansions updated successfully.", body["message"])

	status, body = s.do(t, http.MethodGet, "/api/expansions")
	require.Equal(t, http.StatusOK, status)
	groups := body["expansions"].(map[string]interface{})
	assert.Len(t, groups, 2)
	assert.Contains(t, groups, "Scarlet & Violet")
}

func TestExpansions_GroupOrderInBody(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	resp, err := http.Get(s.server.URL + "/api/expansions/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw struct {
		Expansions json.RawMessage `json:"expansions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	dec := json.NewDecoder(bytes.NewReader(raw.Expansions))
	_, err = dec.Token()
	require.NoError(t, err)

	var series []string
	for dec.More() {
		key, err := dec.Token()
		require.NoError(t, err)
		series = append(series, key.(string))

		var members []json.RawMessage
		require.NoError(t, dec.Decode(&members))
	}
	assert.Equal(t, []string{"Scarlet & Violet", "Base"}, series)
}

func TestUpdateExpansions_UpstreamFailure(t *testing.T) {
	s := newTestServer(t)
	s.upstream.failSets.Store(true)

	status, body := s.do(t, http.MethodPost, "/api/expansions/update/")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "UPSTREAM_ERROR", body["code"])
	assert.NotEmpty(t, body["detail"])
}

func TestCardsInExpansion(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	status, body := s.do(t, http.MethodGet, "/api/expansion/base1/cards")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"1", "2", "3"}, cardNumbers(t, body))

	status, body = s.do(t, http.MethodGet, "/api/expansion/nope/cards")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Expansion not found or no cards available", body["detail"])

	// Synced but empty expansions are also 404.
	status, _ = s.do(t, http.MethodGet, "/api/expansion/sv1/cards")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateExpansionCards(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/expansions/update/")
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodPost, "/api/expansion/base1/cards/update/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["added"])

	status, body = s.do(t, http.MethodPost, "/api/expansion/unknown/cards/update")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(0), body["added"])
}

func TestBackfillAndSyncStatus(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/expansions/update/")
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, http.MethodPost, "/api/cards/backfill")
	require.Equal(t, http.StatusOK, status)
	report := body["report"].(map[string]interface{})
	assert.Equal(t, float64(3), report["inserted"])
	assert.Equal(t, []interface{}{"sv1"}, report["emptySets"])

	status, body = s.do(t, http.MethodGet, "/api/sync/status")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["runs"], 2)
}

func TestSearchCards(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	status, body := s.do(t, http.MethodGet, "/api/search/cards/?q=ALA")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"1"}, cardNumbers(t, body))

	status, body = s.do(t, http.MethodGet, "/api/search/cards?q=a&rarity=rare%20holo&type_=WATER")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2"}, cardNumbers(t, body))

	status, body = s.do(t, http.MethodGet, "/api/search/cards?q=zzz")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["cards"])

	status, body = s.do(t, http.MethodGet, "/api/search/cards/")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = s.do(t, http.MethodGet, "/api/search/cards?q=")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// Whitespace is a valid one-character query.
	status, body = s.do(t, http.MethodGet, "/api/search/cards?q=%20")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["cards"])
}

func TestCollectionFlow(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	status, body := s.do(t, http.MethodGet, "/api/collection/")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["collection"])

	status, body = s.do(t, http.MethodPost, "/api/collection/update/?card_id=base1-1&change=2")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Quantity updated", body["message"])

	status, body = s.do(t, http.MethodGet, "/api/collection/base1/")
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, "1/3", stats["total"])
	assert.Equal(t, map[string]interface{}{"Rare Holo": "1/3"}, stats["rarities"])

	status, body = s.do(t, http.MethodGet, "/api/collection")
	require.Equal(t, http.StatusOK, status)
	collection := body["collection"].([]interface{})
	require.Len(t, collection, 1)
	entry := collection[0].(map[string]interface{})
	assert.Equal(t, "base1-1", entry["card_id"])
	assert.Equal(t, float64(2), entry["quantity"])
	assert.Equal(t, float64(1), entry["collection_number"])

	status, _ = s.do(t, http.MethodPost, "/api/collection/update/?card_id=base1-1&change=-2")
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/api/collection/")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["collection"])
}

func TestUpdateQuantity_Errors(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	status, body := s.do(t, http.MethodPost, "/api/collection/update/?card_id=missing-1&change=1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["detail"], "Failed to update quantity")

	status, body = s.do(t, http.MethodPost, "/api/collection/update/?card_id=base1-1")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	details := body["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "change", details[0].(map[string]interface{})["field"])

	status, _ = s.do(t, http.MethodPost, "/api/collection/update/?change=abc")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestUpdateQuantity_OutOfRange(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	status, _ := s.do(t, http.MethodPost, "/api/collection/update/?card_id=base1-1&change=5")
	require.Equal(t, http.StatusOK, status)

	for _, change := range []string{"9223372036854775807", "2147483648", "-2147483648", "2147483647"} {
		status, body := s.do(t, http.MethodPost, "/api/collection/update/?card_id=base1-1&change="+change)
		assert.Equal(t, http.StatusUnprocessableEntity, status, change)
		assert.Equal(t, "VALIDATION_ERROR", body["code"], change)
	}

	_, body := s.do(t, http.MethodGet, "/api/collection/")
	collection := body["collection"].([]interface{})
	require.Len(t, collection, 1)
	assert.Equal(t, float64(5), collection[0].(map[string]interface{})["quantity"])
}

func TestWidgets(t *testing.T) {
	s := newTestServer(t)
	s.sync(t)

	status, body := s.do(t, http.MethodGet, "/api/widgets/totalCards")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["totalCards"])

	for _, q := range []string{"card_id=base1-1&change=2", "card_id=base1-3&change=1"} {
		status, _ = s.do(t, http.MethodPost, "/api/collection/update/?"+q)
		require.Equal(t, http.StatusOK, status)
	}

	_, body = s.do(t, http.MethodGet, "/api/widgets/totalCards")
	assert.Equal(t, float64(3), body["totalCards"])

	_, body = s.do(t, http.MethodGet, "/api/widgets/totalExpansions/")
	assert.Equal(t, float64(1), body["totalExpansions"])

	resp, err := http.Get(s.server.URL + "/api/widgets/cardsByExpansion")
	require.NoError(t, err)
	defer resp.Body.Close()

	var counts []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, []map[string]interface{}{{"expansionName": "Base", "cardCount": float64(3)}}, counts)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = s.do(t, http.MethodGet, "/api/ready")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ready"])

	status, body = s.do(t, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = s.do(t, http.MethodGet, "/api/admin/stats")
	require.Equal(t, http.StatusOK, status)
	database := body["database"].(map[string]interface{})
	assert.Equal(t, "sqlite", database["db_type"])
	assert.Equal(t, "memory", body["sync_state"].(map[string]interface{})["backend"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.server.URL+"/api/collection/update/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
