package service

import (
	"errors"
	"testing"
)

func TestSkillCreateValidation(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSkillService(gdb)

	if _, err := svc.Create(SkillInput{Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("空名称期望 ErrInvalidInput，实际 %v", err)
	}
	if _, err := svc.Create(SkillInput{Name: "Go", Level: intPtr(101)}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("超范围水平期望 ErrInvalidInput，实际 %v", err)
	}

	item, err := svc.Create(SkillInput{Name: "Go", Category: "Backend", Level: intPtr(90), YearsExperience: intPtr(5)})
	if err != nil {
		t.Fatalf("创建技能失败: %v", err)
	}
	if item.Level != 90 || item.YearsExperience != 5 {
		t.Errorf("字段写入不符合预期: %+v", item)
	}
}

func TestSkillListGrouped(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSkillService(gdb)

	seed := []SkillInput{
		{Name: "Go", Category: "Backend"},
		{Name: "Vue", Category: "Frontend"},
		{Name: "PostgreSQL", Category: "Backend"},
		{Name: "沟通", Category: ""},
	}
	for _, input := range seed {
		if _, err := svc.Create(input); err != nil {
			t.Fatalf("创建技能失败: %v", err)
		}
	}

	groups, err := svc.ListGrouped()
	if err != nil {
		t.Fatalf("分组获取失败: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("分组数 = %d，期望 3", len(groups))
	}
	if groups[0].Name != "Backend" || len(groups[0].Skills) != 2 {
		t.Errorf("Backend 分组不符合预期: %+v", groups[0])
	}
	if groups[2].Name != "其他" {
		t.Errorf("空分类应归入 其他，实际 %q", groups[2].Name)
	}
}

func TestSkillToggleHighlighted(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSkillService(gdb)

	item, err := svc.Create(SkillInput{Name: "Go"})
	if err != nil {
		t.Fatalf("创建技能失败: %v", err)
	}

	toggled, err := svc.ToggleHighlighted(item.ID)
	if err != nil {
		t.Fatalf("切换高亮失败: %v", err)
	}
	if !toggled.IsHighlighted {
		t.Error("切换后应为高亮状态")
	}

	highlighted, err := svc.ListHighlighted()
	if err != nil {
		t.Fatalf("获取高亮列表失败: %v", err)
	}
	if len(highlighted) != 1 {
		t.Errorf("高亮技能数 = %d，期望 1", len(highlighted))
	}
}

func TestSkillReorderAndDelete(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSkillService(gdb)

	first, err := svc.Create(SkillInput{Name: "Go"})
	if err != nil {
		t.Fatalf("创建技能失败: %v", err)
	}
	second, err := svc.Create(SkillInput{Name: "Rust"})
	if err != nil {
		t.Fatalf("创建技能失败: %v", err)
	}

	if err := svc.Reorder([]OrderUpdate{
		{ID: second.ID, SortOrder: 1},
		{ID: first.ID, SortOrder: 2},
	}); err != nil {
		t.Fatalf("保存排序失败: %v", err)
	}

	items, err := svc.ListAll()
	if err != nil {
		t.Fatalf("获取技能列表失败: %v", err)
	}
	if items[0].ID != second.ID {
		t.Errorf("排序后第一项 ID = %d，期望 %d", items[0].ID, second.ID)
	}

	if err := svc.Delete(first.ID); err != nil {
		t.Fatalf("删除技能失败: %v", err)
	}
	if _, err := svc.Get(first.ID); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("删除后期望 ErrSkillNotFound，实际 %v", err)
	}
}
