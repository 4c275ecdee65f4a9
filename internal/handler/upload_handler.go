package handler

import (
	"errors"
	"net/http"

	"github.com/devfolio/internal/storage"
	"github.com/gin-gonic/gin"
)

// UploadImage 处理富文本编辑器的图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的图片", "success": 0})
		return
	}

	key, err := a.files.Save(file, storage.MaxFeaturedSize)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "只允许上传图片文件", "success": 0})
		case errors.Is(err, storage.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "图片超过大小限制", "success": 0})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败", "success": 0})
		}
		return
	}

	fileURL := a.files.URL(key)
	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "上传成功",
		"data": gin.H{
			"filePath": fileURL,
			"url":      fileURL,
			"key":      key,
		},
	})
}
