package records

import (
	"context"
	"log"

	"github.com/shengteng9/float-note-api/internal/model"
)

// 系统默认分类，对所有用户可见。字段定义与产品预设保持一致。
var defaultCategories = []model.Category{
	{
		Name:        "bill",
		Description: "消费账单，如购物、转账、收款",
		FieldSpecs: []model.FieldSpec{
			{Name: "amount", FieldType: model.FieldTypeNumber, Required: true, Description: "金额"},
			{Name: "currency", FieldType: model.FieldTypeString, Default: "CNY", Description: "货币类型"},
			{Name: "merchant", FieldType: model.FieldTypeString, Description: "商家名称"},
			{Name: "category", FieldType: model.FieldTypeString, Description: "消费类别"},
			{Name: "date", FieldType: model.FieldTypeString, Description: "日期"},
			{Name: "time", FieldType: model.FieldTypeString, Description: "时间"},
		},
	},
	{
		Name:        "schedule",
		Description: "日程安排，如会议、预约",
		FieldSpecs: []model.FieldSpec{
			{Name: "event", FieldType: model.FieldTypeString, Required: true, Description: "事件名称"},
			{Name: "date", FieldType: model.FieldTypeString, Description: "日期"},
			{Name: "time", FieldType: model.FieldTypeString, Description: "时间"},
			{Name: "location", FieldType: model.FieldTypeString, Description: "地点"},
			{Name: "participants", FieldType: model.FieldTypeArray, Description: "参与人"},
		},
	},
	{
		Name:        "contact",
		Description: "联系人信息",
		FieldSpecs: []model.FieldSpec{
			{Name: "name", FieldType: model.FieldTypeString, Required: true, Description: "姓名"},
			{Name: "phone", FieldType: model.FieldTypeString, Description: "电话"},
			{Name: "email", FieldType: model.FieldTypeString, Description: "邮箱"},
			{Name: "company", FieldType: model.FieldTypeString, Description: "公司"},
			{Name: "position", FieldType: model.FieldTypeString, Description: "职位"},
		},
	},
	{
		Name:        "expense",
		Description: "开销支出，如报销、花费",
		FieldSpecs: []model.FieldSpec{
			{Name: "amount", FieldType: model.FieldTypeNumber, Required: true, Description: "金额"},
			{Name: "category", FieldType: model.FieldTypeString, Required: true, Description: "支出类别"},
			{Name: "description", FieldType: model.FieldTypeString, Description: "描述"},
			{Name: "date", FieldType: model.FieldTypeString, Description: "日期"},
		},
	},
	{
		Name:        "task",
		Description: "任务待办",
		FieldSpecs: []model.FieldSpec{
			{Name: "title", FieldType: model.FieldTypeString, Required: true, Description: "任务标题"},
			{Name: "priority", FieldType: model.FieldTypeString, Description: "优先级"},
			{Name: "due_date", FieldType: model.FieldTypeString, Description: "截止日期"},
			{Name: "status", FieldType: model.FieldTypeString, Default: "pending", Description: "状态"},
		},
	},
	{
		Name:        "note",
		Description: "随手笔记、想法",
		FieldSpecs: []model.FieldSpec{
			{Name: "content", FieldType: model.FieldTypeString, Required: true, Description: "笔记内容"},
		},
	},
}

// SeedDefaultCategories 启动时补齐缺失的系统默认分类
func (s *CategoryService) SeedDefaultCategories(ctx context.Context) {
	for _, c := range defaultCategories {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&model.Category{}).
			Where("name = ? AND is_default = true", c.Name).
			Count(&count).Error; err != nil {
			log.Println("默认分类检查失败:", c.Name, err)
			continue
		}
		if count > 0 {
			continue
		}

		c.IsDefault = true
		c.IsActive = true
		if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
			log.Println("默认分类创建失败:", c.Name, err)
		}
	}
}
