package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devfolio/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintQuery(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func parseUintString(raw string) uint {
	parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func parseIntQuery(c *gin.Context, key string) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

// parseBoolQuery 把查询参数解析为三态布尔，缺省返回 nil。
func parseBoolQuery(c *gin.Context, key string) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value := isTruthy(raw)
	return &value
}

// 表单辅助：以下 helper 用于 multipart 表单提交的创建/更新请求。

// formString 返回修剪后的表单值。
func formString(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

// formOptionalInt 区分字段缺省与显式提交。
func formOptionalInt(c *gin.Context, key string) *int {
	raw, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &parsed
}

// formOptionalUint 区分字段缺省与显式提交，空字符串视为 0。
func formOptionalUint(c *gin.Context, key string) *uint {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		zero := uint(0)
		return &zero
	}
	value := uint(parsed)
	return &value
}

// formOptionalBool 区分字段缺省与显式提交。
func formOptionalBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	value := isTruthy(raw)
	return &value
}

func formBool(c *gin.Context, key string) bool {
	return isTruthy(c.PostForm(key))
}

// formDate 按 2006-01-02 解析日期字段。
func formDate(c *gin.Context, key string) (time.Time, error) {
	raw := formString(c, key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

// formOptionalDate 解析可空日期字段。
func formOptionalDate(c *gin.Context, key string) (*time.Time, error) {
	raw := formString(c, key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// formLines 把多行文本框按行拆分为条目列表。
func formLines(c *gin.Context, key string) []string {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
}

// formImagePatch 读取单图字段的上传文件与移除标记。
func formImagePatch(c *gin.Context, field string) service.ImagePatch {
	patch := service.ImagePatch{Remove: formBool(c, field+"_remove")}
	if file, err := c.FormFile(field); err == nil {
		patch.File = file
	}
	return patch
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// reorderPayload 描述批量排序请求体。
type reorderPayload struct {
	Orders []struct {
		ID        uint `json:"id"`
		SortOrder int  `json:"order"`
	} `json:"orders"`
}

func (p reorderPayload) toUpdates() []service.OrderUpdate {
	updates := make([]service.OrderUpdate, 0, len(p.Orders))
	for _, order := range p.Orders {
		updates = append(updates, service.OrderUpdate{ID: order.ID, SortOrder: order.SortOrder})
	}
	return updates
}
