package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

var (
	// ErrNotImage 在上传内容不是受支持的图片格式时返回
	ErrNotImage = errors.New("uploaded file is not a supported image")
	// ErrFileTooLarge 在上传内容超过字段大小限制时返回
	ErrFileTooLarge = errors.New("uploaded file exceeds size limit")
)

// 各类图片字段的大小上限
const (
	MaxBadgeSize    = 2 << 20 // 徽章、Logo、头像
	MaxFeaturedSize = 5 << 20 // 项目主图与画廊图片
)

// 允许的图片扩展名
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store 将上传文件保存到本地磁盘，并以相对 key 寻址。
type Store struct {
	dir     string
	urlPath string
}

// NewStore 创建一个落在 dir 目录下的文件存储，urlPath 为对外访问前缀。
func NewStore(dir, urlPath string) *Store {
	return &Store{dir: dir, urlPath: strings.TrimRight(urlPath, "/")}
}

// Dir 返回存储根目录。
func (s *Store) Dir() string {
	return s.dir
}

// Save 校验并保存一个上传的图片文件，返回其存储 key。
// 校验包括扩展名、魔数嗅探与大小限制。
func (s *Store) Save(file *multipart.FileHeader, maxSize int64) (string, error) {
	if file == nil {
		return "", ErrNotImage
	}
	if maxSize > 0 && file.Size > maxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrNotImage
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", ErrFileTooLarge
	}

	// 不信任请求头中的 Content-Type，按魔数嗅探
	if !filetype.IsImage(data) {
		return "", ErrNotImage
	}

	key := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if err := s.write(key, data); err != nil {
		return "", err
	}
	return key, nil
}

// SaveBytes 保存已在内存中的图片数据，供缩略图生成等内部场景使用。
func (s *Store) SaveBytes(data []byte, ext string) (string, error) {
	key := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if err := s.write(key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Delete 删除指定 key 的文件。key 为空或文件不存在时视为成功。
func (s *Store) Delete(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	path := filepath.Join(s.dir, filepath.Base(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

// Exists 返回指定 key 的文件是否存在。
func (s *Store) Exists(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, filepath.Base(key)))
	return err == nil
}

// URL 返回指定 key 的公开访问路径。
func (s *Store) URL(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return s.urlPath + "/" + filepath.Base(key)
}

// Open 以只读方式打开存储文件，缩略图生成时使用。
func (s *Store) Open(key string) (*os.File, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(key)))
}

func (s *Store) write(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return fmt.Errorf("write stored file: %w", err)
	}
	return nil
}
