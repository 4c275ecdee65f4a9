package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/devfolio/internal/db"
	"github.com/devfolio/internal/handler"
	"github.com/devfolio/internal/service"
	"github.com/devfolio/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := service.NewUserService(gdb).EnsureAdmin("admin", "secret"); err != nil {
		t.Fatalf("创建管理员失败: %v", err)
	}

	dir := t.TempDir()
	files := storage.NewStore(dir, "/uploads")
	api := handler.NewAPI(gdb, files, "Test Site")
	return SetupRouter(api, "test-session-secret", dir, "/uploads"), gdb
}

// loginCookies 执行登录并返回会话 Cookie。
func loginCookies(t *testing.T, r *gin.Engine) []*http.Cookie {
	t.Helper()

	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("登录响应码 = %d，期望 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/dashboard" {
		t.Fatalf("登录跳转到 %q，期望 /admin/dashboard", loc)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("登录应写入会话 Cookie")
	}
	return cookies
}

func authedRequest(t *testing.T, r *gin.Engine, cookies []*http.Cookie, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("响应码 = %d，期望 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pong") {
		t.Errorf("响应体不含 pong: %s", w.Body.String())
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/technologies", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("未登录访问后台响应码 = %d，期望 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("跳转到 %q，期望 /admin/login", loc)
	}
}

func TestTechnologyAPIFlow(t *testing.T) {
	r, _ := setupTestRouter(t)
	cookies := loginCookies(t, r)

	// 创建
	payload := []byte(`{"name":"Test Technology","type":"backend","proficiency":85}`)
	w := authedRequest(t, r, cookies, http.MethodPost, "/admin/api/technologies", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("创建技术响应码 = %d，响应体 %s", w.Code, w.Body.String())
	}

	var created struct {
		Item struct {
			ID   uint
			Name string
			Slug string
		} `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("解析创建响应失败: %v", err)
	}
	if created.Item.Slug != "test-technology" {
		t.Errorf("slug = %q，期望 test-technology", created.Item.Slug)
	}

	// 重名冲突
	w = authedRequest(t, r, cookies, http.MethodPost, "/admin/api/technologies", payload)
	if w.Code != http.StatusConflict {
		t.Errorf("重复创建响应码 = %d，期望 409", w.Code)
	}

	// 列表
	w = authedRequest(t, r, cookies, http.MethodGet, "/admin/api/technologies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("列表响应码 = %d", w.Code)
	}
	var listed struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("解析列表响应失败: %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("total = %d，期望 1", listed.Total)
	}

	// 删除
	w = authedRequest(t, r, cookies, http.MethodDelete, fmt.Sprintf("/admin/api/technologies/%d", created.Item.ID), nil)
	if w.Code != http.StatusOK {
		t.Errorf("删除响应码 = %d，响应体 %s", w.Code, w.Body.String())
	}
}

func TestContactSubmissionFlow(t *testing.T) {
	r, _ := setupTestRouter(t)

	form := url.Values{
		"name":    {"张三"},
		"email":   {"zhangsan@example.com"},
		"subject": {"合作咨询"},
		"message": {"想聊一个项目"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("提交留言响应码 = %d，响应体 %s", w.Code, w.Body.String())
	}

	// 非法邮箱被拒绝
	bad := url.Values{"name": {"张三"}, "email": {"nope"}, "message": {"hi"}}
	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(bad.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法留言响应码 = %d，期望 400", w.Code)
	}

	// 后台能看到留言并更新状态
	cookies := loginCookies(t, r)
	w = authedRequest(t, r, cookies, http.MethodGet, "/admin/api/messages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("留言列表响应码 = %d", w.Code)
	}
	var listed struct {
		Total int64 `json:"total"`
		Items []struct {
			ID     uint
			Status string
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("解析留言列表失败: %v", err)
	}
	if listed.Total != 1 || listed.Items[0].Status != "new" {
		t.Fatalf("留言列表不符合预期: %s", w.Body.String())
	}

	statusBody := []byte(`{"status":"replied"}`)
	w = authedRequest(t, r, cookies, http.MethodPut, fmt.Sprintf("/admin/api/messages/%d/status", listed.Items[0].ID), statusBody)
	if w.Code != http.StatusOK {
		t.Errorf("更新留言状态响应码 = %d，响应体 %s", w.Code, w.Body.String())
	}
}

func TestDashboardStatsEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)
	cookies := loginCookies(t, r)

	w := authedRequest(t, r, cookies, http.MethodGet, "/admin/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("仪表盘响应码 = %d，响应体 %s", w.Code, w.Body.String())
	}
}
