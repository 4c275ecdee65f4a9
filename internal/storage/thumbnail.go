package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultThumbnailWidth 是自动生成缩略图的目标宽度。
const DefaultThumbnailWidth = 480

// Thumbnail 按源图片生成等比缩略图并保存，返回缩略图 key。
// 仅支持 jpeg/png/gif，其他格式返回错误，调用方可选择忽略。
func (s *Store) Thumbnail(key string, width int) (string, error) {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}

	f, err := s.Open(key)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode source image: %w", err)
	}

	// 缩略图始终是独立文件，源图被替换时不会留下悬空引用
	bounds := src.Bounds()
	if bounds.Dx() < width {
		width = bounds.Dx()
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	ext := strings.ToLower(filepath.Ext(key))
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	default:
		ext = ".jpg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return s.SaveBytes(buf.Bytes(), ext)
}
