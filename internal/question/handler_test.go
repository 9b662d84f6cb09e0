package question

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/tally"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageXML = `<package name="P" version="5"><rounds><round name="R"><themes>
<theme name="Rivers"><questions><question price="100"><params><param name="question" type="content">
<item>Longest river?</item></param></params><right><answer>Nile</answer></right></question></questions></theme>
</themes></round></rounds></package>`

func newRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, _ := newService(t)
	h := NewHandler(s)
	r := gin.New()
	r.Use(apierr.Middleware(logger.Nop()))
	r.GET("/admin/questions", h.GetQuestionInfo)
	r.POST("/admin/packages", h.ImportPackage)
	return r, s
}

func upload(t *testing.T, r *gin.Engine, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		fw, err := mw.CreateFormFile("file", "content.xml")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/packages", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportPackageHandler(t *testing.T) {
	r, s := newRouter(t)
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		require.NoError(t, s.ImportQuestionReport(ctx, Report{ThemeName: "Rivers", QuestionText: "Longest river?", ReportText: "Amazon", ReportType: tally.Apellated}))
	}

	w := upload(t, r, []byte(packageXML))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"collectedAnswers":{"0,0,0":[{"answerText":"Amazon","relationType":"apellated","count":8}]}}`, w.Body.String())
}

func TestImportPackageHandlerWithoutFile(t *testing.T) {
	r, _ := newRouter(t)
	w := upload(t, r, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errorCode":"packageFileNotFound"}`, w.Body.String())
}

func TestImportPackageHandlerRejectsBadDocument(t *testing.T) {
	r, _ := newRouter(t)
	w := upload(t, r, []byte("<<<"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errorCode":"invalidRequest"}`, w.Body.String())
}

func TestGetQuestionInfoHandler(t *testing.T) {
	r, _ := newRouter(t)
	require.Equal(t, http.StatusOK, upload(t, r, []byte(packageXML)).Code)

	q := url.Values{"themeName": {"Rivers"}, "questionText": {"Longest river?"}}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/questions?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []tally.EntityInfo{{EntityName: "Nile", RelationType: tally.Right, Count: 1}}, resp.Entities)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/questions?themeName=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
