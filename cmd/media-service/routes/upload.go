package routes

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/halcyonweb/mediakit/internal/upload"
	"github.com/halcyonweb/mediakit/pkg/config"
	"github.com/halcyonweb/mediakit/pkg/utils"
)

// chunkRequest carries one base64-encoded chunk. The admin frontend slices
// files client-side and posts each piece with the declared totals.
type chunkRequest struct {
	UploadID    string `json:"uploadId" binding:"required"`
	ChunkIndex  *int   `json:"chunkIndex" binding:"required"`
	TotalChunks int    `json:"totalChunks" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize"`
	ChunkData   string `json:"chunkData" binding:"required"`
}

type completeRequest struct {
	UploadID string `json:"uploadId" binding:"required"`
	FileName string `json:"fileName" binding:"required"`
	Type     string `json:"type"`
}

// UploadRoutes wires the chunked upload API under api
func UploadRoutes(api *gin.RouterGroup, uploadService *upload.Service, cfg *config.UploadConfig) {
	uploads := api.Group("/uploads")

	uploads.GET("/id", handleUploadID())
	uploads.POST("/chunk", handleChunk(uploadService, cfg))
	uploads.POST("/complete", handleComplete(uploadService))
	uploads.DELETE("/:uploadId", handleCleanup(uploadService))
}

func handleUploadID() gin.HandlerFunc {
	return func(c *gin.Context) {
		uploadID, err := utils.GenerateUploadID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to generate upload id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "uploadId": uploadID})
	}
}

func handleChunk(uploadService *upload.Service, cfg *config.UploadConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chunkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing required fields"})
			return
		}

		if req.FileSize > cfg.MaxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("file size exceeds %dMB limit", cfg.MaxFileSize/1024/1024),
			})
			return
		}

		// the declared fileSize alone is client-controlled; bound the chunk
		// count so accumulated fragments cannot exceed the file size limit
		if int64(req.TotalChunks)*cfg.ChunkSize > cfg.MaxFileSize+cfg.ChunkSize {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "too many chunks for the file size limit"})
			return
		}

		data, err := base64.StdEncoding.DecodeString(req.ChunkData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid chunk data format"})
			return
		}
		if int64(len(data)) > cfg.ChunkSize {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "chunk exceeds maximum chunk size"})
			return
		}

		progress, err := uploadService.SaveChunk(req.UploadID, *req.ChunkIndex, req.TotalChunks, data)
		if err != nil {
			log.Error().Err(err).Str("upload_id", req.UploadID).Msg("failed to save chunk")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "error processing chunk"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"uploadId":    progress.UploadID,
			"chunkIndex":  progress.ChunkIndex,
			"totalChunks": progress.TotalChunks,
			"received":    progress.Received,
			"isComplete":  progress.Complete,
		})
	}
}

func handleComplete(uploadService *upload.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req completeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing uploadId or fileName"})
			return
		}
		if req.Type == "" {
			req.Type = "blog"
		}

		result, err := uploadService.Complete(req.UploadID, req.FileName, req.Type)
		if err != nil {
			status, message := completeErrorResponse(err)
			c.JSON(status, gin.H{"success": false, "message": message})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// completeErrorResponse maps pipeline errors to HTTP responses
func completeErrorResponse(err error) (int, string) {
	var (
		missingChunks *upload.MissingChunksError
		missingFile   *upload.MissingChunkFileError
		invalidType   *upload.InvalidFileTypeError
		unknownCase   *upload.UnknownUseCaseError
	)
	switch {
	case errors.As(err, &missingChunks):
		return http.StatusBadRequest, missingChunks.Error()
	case errors.As(err, &invalidType):
		return http.StatusBadRequest, "invalid file type: only images are allowed"
	case errors.As(err, &unknownCase):
		return http.StatusBadRequest, unknownCase.Error()
	case errors.As(err, &missingFile):
		return http.StatusInternalServerError, "upload is corrupt and must be restarted"
	case errors.Is(err, upload.ErrSessionNotFound):
		return http.StatusNotFound, "upload not found"
	default:
		log.Error().Err(err).Msg("failed to complete upload")
		return http.StatusInternalServerError, "error completing upload"
	}
}

func handleCleanup(uploadService *upload.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		uploadService.Cleanup(c.Param("uploadId"))
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
