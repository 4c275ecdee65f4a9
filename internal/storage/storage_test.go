package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), "/uploads")
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 144, B: 255, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码测试图片失败: %v", err)
	}
	return buf.Bytes()
}

func newFileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("构造表单文件失败: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("写入表单文件失败: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("关闭表单失败: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("解析表单失败: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	if len(files) != 1 {
		t.Fatalf("期望 1 个表单文件，实际 %d 个", len(files))
	}
	return files[0]
}

func TestStoreSave(t *testing.T) {
	store := newTestStore(t)

	key, err := store.Save(newFileHeader(t, "photo.png", pngBytes(t, 32, 32)), MaxFeaturedSize)
	if err != nil {
		t.Fatalf("保存图片失败: %v", err)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q，期望保留 .png 扩展名", key)
	}
	if !store.Exists(key) {
		t.Error("保存后文件应存在")
	}
}

func TestStoreSaveRejectsNonImage(t *testing.T) {
	store := newTestStore(t)

	// 扩展名不在白名单
	if _, err := store.Save(newFileHeader(t, "notes.txt", []byte("hello")), MaxBadgeSize); !errors.Is(err, ErrNotImage) {
		t.Errorf("文本文件期望 ErrNotImage，实际 %v", err)
	}

	// 扩展名伪装成图片，魔数不符
	if _, err := store.Save(newFileHeader(t, "fake.png", []byte("just text pretending")), MaxBadgeSize); !errors.Is(err, ErrNotImage) {
		t.Errorf("伪装图片期望 ErrNotImage，实际 %v", err)
	}

	if _, err := store.Save(nil, MaxBadgeSize); !errors.Is(err, ErrNotImage) {
		t.Errorf("空文件期望 ErrNotImage，实际 %v", err)
	}
}

func TestStoreSaveRejectsOversize(t *testing.T) {
	store := newTestStore(t)

	data := pngBytes(t, 64, 64)
	if _, err := store.Save(newFileHeader(t, "big.png", data), int64(len(data)-1)); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("超限文件期望 ErrFileTooLarge，实际 %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	key, err := store.SaveBytes(pngBytes(t, 16, 16), ".png")
	if err != nil {
		t.Fatalf("保存图片失败: %v", err)
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("删除文件失败: %v", err)
	}
	if store.Exists(key) {
		t.Error("删除后文件不应存在")
	}

	// 幂等：不存在的 key 与空 key 都视为成功
	if err := store.Delete(key); err != nil {
		t.Errorf("重复删除应成功，实际 %v", err)
	}
	if err := store.Delete(""); err != nil {
		t.Errorf("空 key 删除应成功，实际 %v", err)
	}
}

func TestStoreURL(t *testing.T) {
	store := NewStore(t.TempDir(), "/uploads/")

	if got := store.URL("abc.png"); got != "/uploads/abc.png" {
		t.Errorf("URL = %q，期望 /uploads/abc.png", got)
	}
	if got := store.URL(""); got != "" {
		t.Errorf("空 key 的 URL = %q，期望空字符串", got)
	}
}

func TestThumbnail(t *testing.T) {
	store := newTestStore(t)

	key, err := store.SaveBytes(pngBytes(t, 960, 640), ".png")
	if err != nil {
		t.Fatalf("保存图片失败: %v", err)
	}

	thumbKey, err := store.Thumbnail(key, 480)
	if err != nil {
		t.Fatalf("生成缩略图失败: %v", err)
	}
	if thumbKey == key {
		t.Error("缩略图应是独立文件")
	}

	f, err := store.Open(thumbKey)
	if err != nil {
		t.Fatalf("打开缩略图失败: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("解码缩略图失败: %v", err)
	}
	if img.Bounds().Dx() != 480 {
		t.Errorf("缩略图宽度 = %d，期望 480", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 320 {
		t.Errorf("缩略图高度 = %d，期望按比例的 320", img.Bounds().Dy())
	}
}

func TestThumbnailSmallSource(t *testing.T) {
	store := newTestStore(t)

	key, err := store.SaveBytes(pngBytes(t, 100, 80), ".png")
	if err != nil {
		t.Fatalf("保存图片失败: %v", err)
	}

	thumbKey, err := store.Thumbnail(key, 480)
	if err != nil {
		t.Fatalf("生成缩略图失败: %v", err)
	}
	if thumbKey == key {
		t.Error("小图也应生成独立的缩略图文件")
	}

	f, err := store.Open(thumbKey)
	if err != nil {
		t.Fatalf("打开缩略图失败: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("解码缩略图失败: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("缩略图宽度 = %d，期望不放大的 100", img.Bounds().Dx())
	}
}
