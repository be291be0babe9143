package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"journeygrid/app"
	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/csvparse"
	"journeygrid/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const journeyCSV = `Stage,Stakeholder,Motivation,Touchpoints,Goal,StageOrder
Aware,Buyer,Needs proof,Web;Email,Grow,1
Aware,User,Curious,,,1
Consider,Buyer,Compare,Demo,Decide,2
`

type staticSource struct {
	text string
	err  error
}

func (s staticSource) Read(context.Context) (domain.RawTable, error) {
	if s.err != nil {
		return domain.RawTable{}, s.err
	}
	return domain.RawTable{Rows: csvparse.Tokenize(s.text), Origin: "test"}, nil
}

func newTestServer(t *testing.T, source staticSource) *Server {
	t.Helper()
	svc := app.NewJourneyService(source, domain.DefaultRegistry(), domain.DefaultHighlightPolicy(), internal.Discard())
	return NewServer(svc, "test", internal.Discard())
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func loadedServer(t *testing.T) *Server {
	s := newTestServer(t, staticSource{text: journeyCSV})
	w, _ := do(t, s, http.MethodPost, "/api/reload", "")
	require.Equal(t, http.StatusOK, w.Code)
	return s
}

func newSession(t *testing.T, s *Server) string {
	w, body := do(t, s, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	return body["id"].(string)
}

func TestHealthBeforeLoad(t *testing.T) {
	s := newTestServer(t, staticSource{text: journeyCSV})
	w, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["loaded"])

	w, _ = do(t, s, http.MethodGet, "/api/journey", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReloadAndJourney(t *testing.T) {
	s := loadedServer(t)
	w, body := do(t, s, http.MethodGet, "/api/journey", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["records"])
	assert.Equal(t, []any{"Aware", "Consider"}, body["stageAxis"])
	assert.Equal(t, false, body["degraded"])
}

func TestReloadErrorStatus(t *testing.T) {
	s := newTestServer(t, staticSource{err: errors.HTMLResponse("https://example.com")})
	w, body := do(t, s, http.MethodPost, "/api/reload", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, errors.CodeHTMLResponse, body["code"])

	s = newTestServer(t, staticSource{text: "Stage,Stakeholder\n"})
	w, body = do(t, s, http.MethodPost, "/api/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, body["error"], "Headers detected: Stage | Stakeholder")
}

func TestSessionToggleAndGrid(t *testing.T) {
	s := loadedServer(t)
	id := newSession(t, s)

	w, body := do(t, s, http.MethodGet, "/api/sessions/"+id+"/grid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["visibleCount"])
	assert.EqualValues(t, 1, body["placeholders"])
	assert.Len(t, body["rows"], 2)

	w, body = do(t, s, http.MethodPost, "/api/sessions/"+id+"/axes/stage/toggle", `{"value":"Aware"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Consider"}, body["stages"])

	w, body = do(t, s, http.MethodGet, "/api/sessions/"+id+"/grid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Consider"}, body["effectiveStage"])
	assert.Equal(t, []any{"Buyer"}, body["effectiveStakeholder"])

	w, body = do(t, s, http.MethodPost, "/api/sessions/"+id+"/axes/stakeholder/clear", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["stakeholders"])

	w, body = do(t, s, http.MethodPost, "/api/sessions/"+id+"/axes/stakeholders/all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["stakeholders"], 2)
}

func TestCondensedGridCarriesHighlights(t *testing.T) {
	s := loadedServer(t)
	id := newSession(t, s)

	w, body := do(t, s, http.MethodGet, "/api/sessions/"+id+"/grid?condensed=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["condensed"])

	rows := body["rows"].([]any)
	first := rows[0].(map[string]any)["cells"].([]any)[0].(map[string]any)
	assert.Equal(t, "Buyer", first["stakeholder"])
	assert.Equal(t, []any{"motivation", "touchpoints", "goal"}, first["highlights"])
}

func TestBadRequests(t *testing.T) {
	s := loadedServer(t)
	id := newSession(t, s)

	w, _ := do(t, s, http.MethodGet, "/api/sessions/not-a-uuid/grid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPost, "/api/sessions/"+id+"/axes/kpi/clear", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodPost, "/api/sessions/"+id+"/axes/stage/toggle", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, s, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = do(t, s, http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHighlightsEndpoint(t *testing.T) {
	s := loadedServer(t)
	w, body := do(t, s, http.MethodGet, "/api/records/Aware/Buyer/highlights", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"motivation", "touchpoints", "goal"}, body["highlights"])

	w, _ = do(t, s, http.MethodGet, "/api/records/Aware/Nobody/highlights", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHighlightsEndpointWithSlashInNames(t *testing.T) {
	s := newTestServer(t, staticSource{text: "Stage,Stakeholder,Motivation\nBuy / Sign,Legal/Procurement,m\n"})
	w, _ := do(t, s, http.MethodPost, "/api/reload", "")
	require.Equal(t, http.StatusOK, w.Code)

	path := "/api/records/" + url.PathEscape("Buy / Sign") + "/" + url.PathEscape("Legal/Procurement") + "/highlights"
	assert.Equal(t, "/api/records/Buy%20%2F%20Sign/Legal%2FProcurement/highlights", path)

	w, body := do(t, s, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Buy / Sign", body["stage"])
	assert.Equal(t, "Legal/Procurement", body["stakeholder"])
	assert.Equal(t, []any{"motivation", "touchpoints"}, body["highlights"])
}
