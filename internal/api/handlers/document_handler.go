package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type DocumentHandler struct {
	service *service.DocumentService
	userScope
}

func NewDocumentHandler(svc *service.DocumentService, defaultUserID int64) *DocumentHandler {
	return &DocumentHandler{service: svc, userScope: userScope{defaultUserID: defaultUserID}}
}

type listDocumentsQuery struct {
	Limit int `form:"limit" default:"50" validate:"gte=1,lte=500"`
}

// Upload accepts a single multipart "file" and returns the processed document.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, domain.InvalidInput("file", "multipart field is required"))
		return
	}
	if header.Size > service.MaxDocumentSize {
		respondError(c, domain.InvalidInput("file", "exceeds %d bytes", service.MaxDocumentSize))
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxDocumentSize+1))
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), userID, header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var q listDocumentsQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	docs, err := h.service.List(c.Request.Context(), userID, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
