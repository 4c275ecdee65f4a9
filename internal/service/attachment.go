package service

import (
	"mime/multipart"

	"github.com/devfolio/internal/storage"
)

// ImagePatch 描述调用方对单图字段的意图：
// Remove 为 true 时删除现有图片；否则提供 File 时替换；两者都缺省则保持不变。
type ImagePatch struct {
	File   *multipart.FileHeader
	Remove bool
}

// resolveImage 执行单图字段的替换协议，返回字段的新值与是否发生变化。
// 新文件先落盘再删除旧文件，保证任何时刻字段引用的文件都存在。
func resolveImage(files *storage.Store, current string, patch ImagePatch, maxSize int64) (string, bool, error) {
	if patch.Remove {
		if current == "" {
			return "", false, nil
		}
		if err := files.Delete(current); err != nil {
			return current, false, err
		}
		return "", true, nil
	}

	if patch.File == nil {
		return current, false, nil
	}

	key, err := files.Save(patch.File, maxSize)
	if err != nil {
		return current, false, err
	}
	if current != "" {
		if err := files.Delete(current); err != nil {
			// 新文件已就位，旧文件删除失败只记为错误返回，字段仍指向新值
			return key, true, err
		}
	}
	return key, true, nil
}

// deleteImages 删除实体持有的一组文件，空 key 会被跳过。
func deleteImages(files *storage.Store, keys ...string) error {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := files.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
