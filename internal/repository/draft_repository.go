package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DraftRepository 草稿区为单个 JSON 文件，持有方式与线上库（MySQL）彻底分离。
// 文件不存在、内容损坏或顶层不是数组时一律视为空草稿区，不报错。
type DraftRepository struct {
	Path string
}

func NewDraftRepository(path string) *DraftRepository {
	return &DraftRepository{Path: path}
}

// Load 读取全部草稿，过滤掉非对象元素
func (r *DraftRepository) Load() ([]map[string]interface{}, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []map[string]interface{}{}, nil
		}
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []map[string]interface{}{}, nil
	}
	drafts := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		var obj map[string]interface{}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		drafts = append(drafts, obj)
	}
	return drafts, nil
}

// LoadRaw 返回文件原始字节；冻结前的 JSON 合法性校验用
func (r *DraftRepository) LoadRaw() ([]byte, error) {
	return os.ReadFile(r.Path)
}

// Save 以 2 空格缩进整体覆盖写回
func (r *DraftRepository) Save(drafts []map[string]interface{}) error {
	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(r.Path, data, 0o644)
}
