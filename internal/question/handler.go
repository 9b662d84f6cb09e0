package question

import (
	"errors"
	"io"
	"net/http"

	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/siq"
	"github.com/gin-gonic/gin"
)

// maxPackageUploadBytes 限制上传题包文件的大小
const maxPackageUploadBytes = 100 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetQuestionInfo GET /admin/questions?themeName=&questionText=
func (h *Handler) GetQuestionInfo(c *gin.Context) {
	themeName, ok1 := c.GetQuery("themeName")
	questionText, ok2 := c.GetQuery("questionText")
	if !ok1 || !ok2 {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, errors.New("themeName and questionText are required")))
		return
	}

	info, err := h.service.QueryQuestionInfo(c.Request.Context(), themeName, questionText)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ImportPackage POST /admin/packages，表单中的第一个文件为题包
func (h *Handler) ImportPackage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPackageUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodePackageFileNotFound, err))
		return
	}
	var data []byte
	for _, files := range form.File {
		if len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			_ = c.Error(apierr.BadRequest(apierr.CodePackageFileNotFound, err))
			return
		}
		data, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			_ = c.Error(apierr.BadRequest(apierr.CodePackageFileNotFound, err))
			return
		}
		break
	}
	if data == nil {
		_ = c.Error(apierr.BadRequest(apierr.CodePackageFileNotFound, errors.New("no file in form")))
		return
	}

	pkg, err := siq.Read(data)
	if err != nil {
		_ = c.Error(apierr.BadRequest(apierr.CodeInvalidRequest, err))
		return
	}

	result, err := h.service.ImportPackage(c.Request.Context(), pkg)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
