package processor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shengteng9/float-note-api/internal/service"
)

// Classifier 把归一化文本分到候选分类之一。
// 模型不可用或答非所问时退化为离线关键词判断，分类永不失败。
type Classifier struct {
	Chat service.ChatService
}

// 关键词兜底表，按固定顺序匹配，命中即返回该原型分类名
var fallbackArchetypes = []struct {
	name     string
	keywords []string
}{
	{"bill", []string{"消费", "支付", "账单", "金额", "元", "¥", "￥", "$"}},
	{"schedule", []string{"会议", "预约", "时间", "地点", "参加", "安排"}},
	{"contact", []string{"电话", "手机", "邮箱", "地址", "联系人"}},
	{"expense", []string{"开销", "花费", "支出", "费用", "报销"}},
	{"task", []string{"任务", "待办", "完成", "截止", "优先级"}},
	{"note", []string{"笔记", "记录", "想法", "备注", "提醒"}},
}

const fallbackDefault = "note"

// Classify 返回候选集中的一个分类名
func (c *Classifier) Classify(ctx context.Context, text string, bundle *CategoryBundle) string {
	name, err := c.classifyByModel(ctx, text, bundle)
	if err != nil {
		log.Println("类型检测失败:", err)
		return FallbackClassify(text, bundle.Names)
	}
	return name
}

func (c *Classifier) classifyByModel(ctx context.Context, text string, bundle *CategoryBundle) (string, error) {
	system := fmt.Sprintf(
		"你是一个智能类型分类器。请分析用户输入的内容，判断它属于哪种类型。可选的类型有：%s。请只返回类型名称，不要返回其他内容。不要解释。",
		bundle.Description,
	)

	resp, err := c.Chat.Complete(ctx, system, "用户输入："+text)
	if err != nil {
		return "", err
	}

	detected := strings.ToLower(strings.TrimSpace(resp))
	for _, name := range bundle.Names {
		if detected == strings.ToLower(name) {
			return name, nil
		}
	}

	return "", fmt.Errorf("检测到的类型 %q 不在可选类型列表中", detected)
}

// FallbackClassify 纯函数的离线兜底：大小写不敏感的子串匹配，
// 优先返回候选集中命中的原型，全部不中时返回 note。
func FallbackClassify(text string, candidates []string) string {
	lower := strings.ToLower(text)

	candidateSet := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		candidateSet[strings.ToLower(c)] = true
	}

	first := ""
	for _, a := range fallbackArchetypes {
		for _, kw := range a.keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				if candidateSet[a.name] {
					return a.name
				}
				if first == "" {
					first = a.name
				}
				break
			}
		}
	}

	if first != "" {
		return first
	}
	return fallbackDefault
}
