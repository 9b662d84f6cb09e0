package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/packagestats"
	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	h := NewHandler(f.service)

	r := gin.New()
	r.Use(apierr.Middleware(logger.Nop()))
	r.GET("/games/results", h.GetResults)
	r.GET("/games/stats", h.GetStatistic)
	r.GET("/games/packages", h.GetPackages)
	r.POST("/games/packages/stats", h.PostPackageStats)
	r.GET("/games/packages/info", h.GetPackageInfo)
	r.POST("/games/reports", h.PostReport)
	r.POST("/admin/reports", h.PostAdminReport)
	return r, f
}

func do(r *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const reportJSON = `{
	"info": {
		"package": {"name": "P", "hash": "h1", "authors": ["A"], "source": "https://vk.com/p"},
		"languageCode": "ru",
		"name": "evening game",
		"platform": "local",
		"finishTime": "2026-03-01T12:00:00Z",
		"duration": "00:45:00",
		"results": {"alice": 300, "bob": -100},
		"reviews": {"alice": "good"},
		"stats": {"topLevelStats": {"startedGameCount": 1, "completedGameCount": 1},
			"questionStats": {"q1": {"shownCount": 2, "playerSeenCount": 2, "correctCount": 1, "wrongCount": 1}}}
	},
	"questionReports": [
		{"themeName": "Rivers", "questionText": "Longest river?", "reportText": "Amazon", "reportType": "apellated"}
	]
}`

func TestPostReportAndQuery(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/games/reports", reportJSON)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	q := url.Values{}
	q.Set("from", baseTime.Add(-time.Hour).Format(time.RFC3339))
	q.Set("to", baseTime.Add(time.Hour).Format(time.RFC3339))
	q.Set("platform", "local")

	w = do(r, http.MethodGet, "/games/results?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var games GamesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &games))
	require.Len(t, games.Results, 1)
	g := games.Results[0]
	assert.Equal(t, "evening game", g.Name)
	assert.Equal(t, Local, g.Platform)
	assert.Contains(t, w.Body.String(), `"platform":"local"`)
	assert.Equal(t, Duration(45*time.Minute), g.Duration)
	assert.Equal(t, map[string]int{"alice": 300, "bob": -100}, g.Results)
	require.NotNil(t, g.LanguageCode)
	assert.Equal(t, "ru", *g.LanguageCode)

	w = do(r, http.MethodGet, "/games/stats?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"gameCount":1,"totalDuration":"00:45:00"}`, w.Body.String())

	w = do(r, http.MethodGet, "/games/packages?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"packages":[{"package":{"name":"P","hash":"h1","authors":["A"],"source":"https://vk.com/p"},"gameCount":1}]}`, w.Body.String())

	w = do(r, http.MethodPost, "/games/packages/stats", map[string]interface{}{"name": "P", "hash": "h1", "authors": []string{"A"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"topLevelStats":{"startedGameCount":1,"completedGameCount":1},
		"questionStats":{"q1":{"shownCount":2,"playerSeenCount":2,"correctCount":1,"wrongCount":1}}}`, w.Body.String())

	w = do(r, http.MethodGet, "/games/packages/info?name=P&hash=h1&authors=A&includeStats=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info PackageInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "P", info.Package.Name)
	require.NotNil(t, info.Stats)
	assert.Equal(t, 1, info.Stats.TopLevelStats.CompletedGameCount)
}

func TestPostReportValidation(t *testing.T) {
	r, _ := newRouter(t)

	cases := []struct {
		name string
		body string
		code string
	}{
		{"no info", `{"questionReports": []}`, apierr.CodeGameInfoNotFound},
		{"server platform", `{"info": {"package": {"name": "P", "hash": "h"}, "platform": 2, "finishTime": "2026-03-01T12:00:00Z", "duration": "00:10:00"}}`, apierr.CodeUnsupportedPlatform},
		{"stale", `{"info": {"package": {"name": "P", "hash": "h"}, "platform": 1, "finishTime": "2026-02-01T12:00:00Z", "duration": "00:10:00"}}`, apierr.CodeInvalidFinishTime},
		{"too long", `{"info": {"package": {"name": "P", "hash": "h"}, "platform": 1, "finishTime": "2026-03-01T12:00:00Z", "duration": "11:00:00"}}`, apierr.CodeInvalidDuration},
		{"no hash", `{"info": {"package": {"name": "P"}, "platform": 1, "finishTime": "2026-03-01T12:00:00Z", "duration": "00:10:00"}}`, apierr.CodeMissingPackageHash},
		{"bad json", `{"info": `, apierr.CodeInvalidRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/games/reports", c.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"errorCode":"`+c.code+`"}`, w.Body.String())
		})
	}
}

func TestPostAdminReportAcceptsServerGames(t *testing.T) {
	r, f := newRouter(t)
	body := `{"info": {"package": {"name": "P", "hash": "h"}, "platform": "gameServer", "finishTime": "2026-03-01T12:00:00Z", "duration": "1.00:00:00"}}`

	w := do(r, http.MethodPost, "/admin/reports", body)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	stale := `{"info": {"package": {"name": "P", "hash": "h"}, "platform": "gameServer", "finishTime": "2025-01-01T00:00:00Z", "duration": "00:10:00"}}`
	w = do(r, http.MethodPost, "/admin/reports", stale)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errorCode":"invalidFinishTime"}`, w.Body.String())

	var count int64
	require.NoError(t, f.db.Model(&Record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPackageQueriesNotFound(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/games/packages/stats", map[string]interface{}{"name": "none", "hash": "h"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"errorCode":"notFound"}`, w.Body.String())

	w = do(r, http.MethodGet, "/games/packages/info?name=none&hash=h", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/games/packages/info?name=none", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterParsingErrors(t *testing.T) {
	r, _ := newRouter(t)
	for _, target := range []string{
		"/games/results?platform=cloud",
		"/games/stats?from=yesterday",
		"/games/packages?count=many",
	} {
		w := do(r, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.JSONEq(t, `{"errorCode":"invalidRequest"}`, w.Body.String(), target)
	}

	w := do(r, http.MethodGet, "/games/packages?source=nohost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errorCode":"invalidSource"}`, w.Body.String())
}

func TestToAPIErrorMapsMergeConflict(t *testing.T) {
	err := toAPIError(fmt.Errorf("合并失败: %w", packagestats.ErrMergeConflict))
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, apierr.CodeServiceUnavailable, apiErr.Code)

	plain := errors.New("boom")
	assert.Same(t, plain, toAPIError(plain))
}
