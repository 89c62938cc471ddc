package processor

import (
	"context"
	"log"
	"strings"

	"github.com/longbridgeapp/opencc"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/retry"
	"github.com/shengteng9/float-note-api/internal/service"
)

// 识别结果的前缀标记，提示下游这是未经人工确认的机器输出
const (
	imageMarker = "[图片内容] 这是图片ocr识别出的内容(可能包含噪声,建议先清理数据):"
	audioMarker = "[语音内容] 这是通过语音识别出的内容:"
)

// Normalizer 把多模态原始输入归一成一段文本
type Normalizer struct {
	Files  service.FileService
	OCR    service.OCRService
	Speech service.SpeechService
	Retry  retry.Policy

	cc *opencc.OpenCC // 繁转简，构造失败时为 nil，原样透传
}

func NewNormalizer(files service.FileService, ocr service.OCRService, speech service.SpeechService) *Normalizer {
	cc, err := opencc.New("t2s")
	if err != nil {
		log.Println("OpenCC init failed, speech text passes through:", err)
		cc = nil
	}

	return &Normalizer{
		Files:  files,
		OCR:    ocr,
		Speech: speech,
		Retry:  retry.Default,
		cc:     cc,
	}
}

// Normalize 按输入顺序提取每条输入的文本，用单个空格拼接。
// 全部为空时返回空串，由调用方短路处理。不修改入参。
func (n *Normalizer) Normalize(ctx context.Context, inputs []model.RawInput) (string, error) {
	fragments := make([]string, 0, len(inputs))

	for _, in := range inputs {
		var text string
		var err error

		switch in.Type {
		case model.InputTypeText:
			text = in.Content
		case model.InputTypeImage:
			text, err = n.imageText(ctx, in.FilePath)
		case model.InputTypeAudio:
			text, err = n.audioText(ctx, in.FilePath)
		default:
			return "", &UnsupportedInputError{InputType: in.Type}
		}
		if err != nil {
			return "", err
		}

		if text != "" {
			fragments = append(fragments, text)
		}
	}

	return strings.Join(fragments, " "), nil
}

func (n *Normalizer) imageText(ctx context.Context, filePath string) (string, error) {
	var texts []string

	err := n.Retry.Do(ctx, func(ctx context.Context) error {
		data, err := n.Files.Read(filePath)
		if err != nil {
			return err
		}
		texts, err = n.OCR.Recognize(ctx, data)
		return err
	})
	if err != nil {
		return "", &ExtractionError{Kind: ExtractionKindImage, Err: err}
	}

	if len(texts) == 0 {
		return "", nil
	}
	return imageMarker + strings.Join(texts, "|"), nil
}

func (n *Normalizer) audioText(ctx context.Context, filePath string) (string, error) {
	var segments []service.SpeechSegment

	err := n.Retry.Do(ctx, func(ctx context.Context) error {
		fullPath, err := n.Files.Resolve(filePath)
		if err != nil {
			return err
		}
		segments, err = n.Speech.Transcribe(ctx, fullPath, "zh")
		return err
	})
	if err != nil {
		return "", &ExtractionError{Kind: ExtractionKindAudio, Err: err}
	}

	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
	}
	if sb.Len() == 0 {
		return "", nil
	}

	return audioMarker + n.toSimplified(sb.String()), nil
}

func (n *Normalizer) toSimplified(text string) string {
	if n.cc == nil {
		return text
	}
	out, err := n.cc.Convert(text)
	if err != nil {
		log.Println("OpenCC convert failed:", err)
		return text
	}
	return out
}
