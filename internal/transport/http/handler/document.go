package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"teambot/internal/app"
	"teambot/internal/transport/http/middleware"
	"teambot/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
	maxUploadBytes  int64
}

func NewDocumentHandler(documentService *app.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Upload accepts a multipart form with a "file" part and an optional
// "name" field. Processing is asynchronous: the response carries the
// document in pending status.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	botID := c.Param("id")

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "missing file upload")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "unreadable file upload")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "unreadable file upload")
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), app.UploadDocumentInput{
		UserID:   userID,
		BotID:    botID,
		Name:     c.PostForm("name"),
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Payload:  payload,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	docs, err := h.documentService.ListDocuments(c.Param("id"), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	doc, err := h.documentService.GetDocument(c.Param("id"), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	documentID := c.Param("id")

	if err := h.documentService.DeleteDocument(documentID, userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"deletedDocumentId": documentID})
}
