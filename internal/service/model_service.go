package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// OCRService 图片文字识别能力
type OCRService interface {
	// Recognize 返回识别出的文本片段，保持版面顺序
	Recognize(ctx context.Context, image []byte) ([]string, error)
}

// SpeechSegment 一段带时间信息的转写结果
type SpeechSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SpeechService 语音转写能力
type SpeechService interface {
	Transcribe(ctx context.Context, filePath, language string) ([]SpeechSegment, error)
}

// ChatService 对话补全能力
type ChatService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteStructured 约束模型输出为 JSON 对象并解码。
	// fields 为字段名到 {type, description} 的表，随请求下发。
	CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, fields map[string]map[string]string) (map[string]any, error)
}

// HTTPModelService 调用模型服务，同时实现 OCR / ASR / 对话三个能力
type HTTPModelService struct {
	URL    string
	client *http.Client
}

func NewHTTPModelService(URL string) *HTTPModelService {
	return &HTTPModelService{
		URL: URL,
		client: &http.Client{
			Timeout: 120 * time.Second, // 单次请求超时，与重试策略相互独立
		},
	}
}

func (s *HTTPModelService) Recognize(ctx context.Context, image []byte) ([]string, error) {
	reqURL := fmt.Sprintf("%s/ocr", s.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var result struct {
		Texts []string `json:"texts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Texts, nil
}

func (s *HTTPModelService) Transcribe(ctx context.Context, filePath, language string) ([]SpeechSegment, error) {
	form := url.Values{}
	form.Set("path", filePath)
	form.Set("language", language)

	body, err := s.postForm(ctx, fmt.Sprintf("%s/transcribe", s.URL), form)
	if err != nil {
		return nil, err
	}

	var result struct {
		Segments []SpeechSegment `json:"segments"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Segments, nil
}

func (s *HTTPModelService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	form := url.Values{}
	form.Set("system", systemPrompt)
	form.Set("user", userPrompt)

	body, err := s.postForm(ctx, fmt.Sprintf("%s/chat", s.URL), form)
	if err != nil {
		return "", err
	}

	var result struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	return result.Content, nil
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func (s *HTTPModelService) CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, fields map[string]map[string]string) (map[string]any, error) {
	schemaJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("system", systemPrompt)
	form.Set("user", userPrompt)
	form.Set("schema", string(schemaJSON))

	body, err := s.postForm(ctx, fmt.Sprintf("%s/chat", s.URL), form)
	if err != nil {
		return nil, err
	}

	var result struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return DecodeObjectResponse(result.Content)
}

// DecodeObjectResponse 把模型返回的文本解码成 JSON 对象。
// 模型可能把 JSON 包在解释文字里，解码失败时截取首个 {...} 块重试。
func DecodeObjectResponse(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		return obj, nil
	}

	if m := jsonObjectPattern.FindString(content); m != "" {
		if err := json.Unmarshal([]byte(m), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("model response is not a JSON object")
}

func (s *HTTPModelService) postForm(ctx context.Context, reqURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *HTTPModelService) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := resp.Body.Close(); e != nil {
			log.Println("Failed to close response body:", e)
		}
	}()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("model service error: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
