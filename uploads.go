package main

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/compliance_backend/config"
	"bitbucket.org/mmdatafocus/compliance_backend/models"
	"bitbucket.org/mmdatafocus/compliance_backend/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var attachmentMimeTypes = map[string]bool{
	"application/pdf":          true,
	"application/msword":       true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"image/jpeg": true,
	"image/png":  true,
}

const thumbnailMaxEdge = 320

// uploadHandler accepts a multipart upload for an asset attachment, stores
// the object (plus a thumbnail for images) in GCS, and records a Document
// row. Form fields: file, reference_type (equipment|plant), reference_id.
func uploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		referenceType := c.PostForm("reference_type")
		referenceId, err := strconv.Atoi(c.PostForm("reference_id"))
		if referenceType == "" || err != nil || referenceId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference_type and reference_id are required"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if !attachmentMimeTypes[contentType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		objectKey := path.Join(referenceType, fmt.Sprint(referenceId), utils.GenerateUniqueFilename()+ext)

		if err := utils.UploadFileToGCS(c.Request.Context(), objectKey, file); err != nil {
			config.LogError(logger, "uploads.go", "uploadHandler", "upload object", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		thumbnailKey := ""
		if imageMimeTypes[contentType] {
			// re-open: the reader was consumed by the upload
			img, err := fileHeader.Open()
			if err == nil {
				thumb, thumbErr := makeThumbnail(img)
				_ = img.Close()
				if thumbErr == nil {
					thumbnailKey = strings.TrimSuffix(objectKey, ext) + "_thumb.jpg"
					if err := utils.UploadBytesToGCS(c.Request.Context(), thumbnailKey, thumb, "image/jpeg"); err != nil {
						config.LogError(logger, "uploads.go", "uploadHandler", "upload thumbnail", thumbnailKey, err)
						thumbnailKey = ""
					}
				} else {
					config.LogError(logger, "uploads.go", "uploadHandler", "generate thumbnail", objectKey, thumbErr)
				}
			}
		}

		doc, err := models.CreateDocument(c.Request.Context(), &models.Document{
			ReferenceType: referenceType,
			ReferenceId:   referenceId,
			FileName:      fileHeader.Filename,
			ObjectKey:     objectKey,
			ThumbnailKey:  thumbnailKey,
			ContentType:   contentType,
			Size:          fileHeader.Size,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"document":      doc,
			"document_url":  doc.DocumentURL(),
			"thumbnail_url": doc.ThumbnailURL(),
		})
	}
}

func makeThumbnail(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, thumbnailMaxEdge, thumbnailMaxEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpeg.DefaultQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// importEquipmentXlsxHandler accepts a multipart xlsx workbook and runs it
// through the bulk import pipeline.
func importEquipmentXlsxHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
			return
		}
		defer file.Close()

		workbook, err := excelize.OpenReader(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "not a valid xlsx workbook"})
			return
		}
		defer workbook.Close()

		created, err := models.ImportEquipmentXlsx(c.Request.Context(), workbook)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"imported": len(created), "items": created})
	}
}
