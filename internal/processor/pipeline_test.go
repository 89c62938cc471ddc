package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/retry"
	"github.com/shengteng9/float-note-api/internal/schema"
	"github.com/shengteng9/float-note-api/internal/service"
)

var fastRetry = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 1, MaxDelay: time.Millisecond}

type fakeFiles struct {
	files map[string][]byte
	reads int
}

func (f *fakeFiles) Save(fileName string, data []byte, subPath string) (string, error) {
	return fileName, nil
}

func (f *fakeFiles) Read(subPath string) ([]byte, error) {
	f.reads++
	data, ok := f.files[subPath]
	if !ok {
		return nil, errors.New("file not found: " + subPath)
	}
	return data, nil
}

func (f *fakeFiles) Delete(subPath string) (bool, error) { return true, nil }
func (f *fakeFiles) Exists(subPath string) bool          { _, ok := f.files[subPath]; return ok }
func (f *fakeFiles) Resolve(subPath string) (string, error) {
	if _, ok := f.files[subPath]; !ok {
		return "", errors.New("file not found: " + subPath)
	}
	return "/abs/" + subPath, nil
}
func (f *fakeFiles) List(subPath string) ([]service.FileInfo, error) { return nil, nil }

type fakeOCR struct {
	texts []string
	err   error
	calls int
}

func (o *fakeOCR) Recognize(ctx context.Context, image []byte) ([]string, error) {
	o.calls++
	return o.texts, o.err
}

type fakeSpeech struct {
	segments []service.SpeechSegment
	err      error
	calls    int
}

func (s *fakeSpeech) Transcribe(ctx context.Context, filePath, language string) ([]service.SpeechSegment, error) {
	s.calls++
	return s.segments, s.err
}

type fakeChat struct {
	completeResp    string
	completeErr     error
	structuredResp  map[string]any
	structuredErr   error
	completeCalls   int
	structuredCalls int
}

func (c *fakeChat) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.completeCalls++
	return c.completeResp, c.completeErr
}

func (c *fakeChat) CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, fields map[string]map[string]string) (map[string]any, error) {
	c.structuredCalls++
	return c.structuredResp, c.structuredErr
}

type fakeTagStore struct {
	existing []model.Tag
	listErr  error
	created  []model.Tag
	bulkErr  error
}

func (s *fakeTagStore) ListByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]model.Tag, error) {
	return s.existing, s.listErr
}

func (s *fakeTagStore) BulkCreate(ctx context.Context, tags []model.Tag) error {
	s.created = append(s.created, tags...)
	return s.bulkErr
}

func newNormalizer(files service.FileService, ocr service.OCRService, speech service.SpeechService) *Normalizer {
	return &Normalizer{Files: files, OCR: ocr, Speech: speech, Retry: fastRetry}
}

func testBundle(t *testing.T, names ...string) *CategoryBundle {
	t.Helper()

	bundle := &CategoryBundle{
		Schemas:  make(map[string]*schema.Schema, len(names)),
		NameToID: make(map[string]uuid.UUID, len(names)),
		Names:    names,
	}
	for _, name := range names {
		sch, err := schema.Build([]model.FieldSpec{
			{Name: "amount", FieldType: model.FieldTypeNumber, Default: 0},
		})
		require.NoError(t, err)
		bundle.Schemas[name] = sch
		bundle.NameToID[name] = uuid.New()
	}
	return bundle
}

func TestNormalizeJoinsTextInputs(t *testing.T) {
	n := newNormalizer(&fakeFiles{}, &fakeOCR{}, &fakeSpeech{})

	out, err := n.Normalize(context.Background(), []model.RawInput{
		{Type: model.InputTypeText, Content: "hello"},
		{Type: model.InputTypeText, Content: "world"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestNormalizeImageMarker(t *testing.T) {
	files := &fakeFiles{files: map[string][]byte{"a.jpg": []byte("img")}}
	ocr := &fakeOCR{texts: []string{"第一行", "第二行"}}
	n := newNormalizer(files, ocr, &fakeSpeech{})

	out, err := n.Normalize(context.Background(), []model.RawInput{
		{Type: model.InputTypeImage, FilePath: "a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, imageMarker+"第一行|第二行", out)
}

func TestNormalizeAudioMarker(t *testing.T) {
	files := &fakeFiles{files: map[string][]byte{"a.mp3": []byte("audio")}}
	speech := &fakeSpeech{segments: []service.SpeechSegment{{Text: "你好"}, {Text: "世界"}}}
	n := newNormalizer(files, &fakeOCR{}, speech)

	out, err := n.Normalize(context.Background(), []model.RawInput{
		{Type: model.InputTypeAudio, FilePath: "a.mp3"},
	})
	require.NoError(t, err)
	assert.Equal(t, audioMarker+"你好世界", out)
}

func TestNormalizeRetriesThenFails(t *testing.T) {
	files := &fakeFiles{files: map[string][]byte{"a.jpg": []byte("img")}}
	ocr := &fakeOCR{err: errors.New("ocr down")}
	n := newNormalizer(files, ocr, &fakeSpeech{})

	_, err := n.Normalize(context.Background(), []model.RawInput{
		{Type: model.InputTypeImage, FilePath: "a.jpg"},
	})

	var eerr *ExtractionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, ExtractionKindImage, eerr.Kind)
	assert.Equal(t, 3, ocr.calls)
}

func TestNormalizeRejectsDocuments(t *testing.T) {
	n := newNormalizer(&fakeFiles{}, &fakeOCR{}, &fakeSpeech{})

	_, err := n.Normalize(context.Background(), []model.RawInput{
		{Type: model.InputTypeDocument, FilePath: "a.pdf"},
	})

	var uerr *UnsupportedInputError
	require.ErrorAs(t, err, &uerr)
}

func TestClassifyUsesModelAnswer(t *testing.T) {
	chat := &fakeChat{completeResp: " Bill \n"}
	c := &Classifier{Chat: chat}

	got := c.Classify(context.Background(), "星巴克 消费 45 元", testBundle(t, "bill", "note"))
	assert.Equal(t, "bill", got)
}

func TestClassifyFallsBackWhenModelDown(t *testing.T) {
	chat := &fakeChat{completeErr: errors.New("model down")}
	c := &Classifier{Chat: chat}

	got := c.Classify(context.Background(), "花了 ¥100 买咖啡", testBundle(t, "bill", "note"))
	assert.Equal(t, "bill", got)
}

func TestClassifyFallsBackOnUnknownAnswer(t *testing.T) {
	chat := &fakeChat{completeResp: "groceries"}
	c := &Classifier{Chat: chat}

	got := c.Classify(context.Background(), "明天下午三点开会", testBundle(t, "bill", "schedule"))
	assert.Equal(t, "schedule", got)
}

func TestFallbackClassifyDefault(t *testing.T) {
	assert.Equal(t, "note", FallbackClassify("随便写点什么", []string{"bill", "note"}))
}

func TestFallbackClassifyPrefersCandidates(t *testing.T) {
	// "会议" 命中 schedule，但 schedule 不在候选集中时仍返回原型名
	assert.Equal(t, "schedule", FallbackClassify("下午有会议", []string{"bill", "note"}))
	assert.Equal(t, "schedule", FallbackClassify("下午有会议", []string{"schedule", "note"}))
}

func TestExtractSplitsCommaTags(t *testing.T) {
	sch, err := schema.Build(nil)
	require.NoError(t, err)

	chat := &fakeChat{structuredResp: map[string]any{
		"raw_text": "抹茶蛋糕真好吃",
		"tags":     "美食, 甜点",
	}}
	e := &Extractor{Chat: chat}

	got, err := e.Extract(context.Background(), sch, "抹茶蛋糕真好吃", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"美食", "甜点"}, got.Tags)
	assert.Equal(t, 1, chat.structuredCalls)
}

func TestExtractMissingTags(t *testing.T) {
	sch, err := schema.Build(nil)
	require.NoError(t, err)

	chat := &fakeChat{structuredResp: map[string]any{
		"raw_text": "x",
		"tags":     " , ",
	}}
	e := &Extractor{Chat: chat}

	_, err = e.Extract(context.Background(), sch, "x", nil)
	var merr *MissingTagsError
	assert.ErrorAs(t, err, &merr)
}

func TestExtractParseError(t *testing.T) {
	sch, err := schema.Build(nil)
	require.NoError(t, err)

	chat := &fakeChat{structuredErr: errors.New("bad json")}
	e := &Extractor{Chat: chat}

	_, err = e.Extract(context.Background(), sch, "x", nil)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestReconcileCreatesOnlyNewTags(t *testing.T) {
	userID, categoryID := uuid.New(), uuid.New()
	existing := []model.Tag{{Name: "美食", UserID: userID, CategoryID: categoryID}}

	store := &fakeTagStore{existing: existing}
	r := &TagReconciler{Store: store}

	got := r.Reconcile(context.Background(), []string{"美食", "甜点"}, existing, userID, categoryID)

	assert.Equal(t, []string{"美食", "甜点"}, got)
	require.Len(t, store.created, 1)
	assert.Equal(t, "甜点", store.created[0].Name)
	assert.True(t, store.created[0].SystemCreated)
	assert.Equal(t, categoryID, store.created[0].CategoryID)
}

func TestReconcileSurvivesStoreFailure(t *testing.T) {
	store := &fakeTagStore{bulkErr: errors.New("db down")}
	r := &TagReconciler{Store: store}

	got := r.Reconcile(context.Background(), []string{"甜点"}, nil, uuid.New(), uuid.New())
	assert.Equal(t, []string{"甜点"}, got)
}

func TestPipelineShortCircuitsOnEmptyInput(t *testing.T) {
	ocr := &fakeOCR{}
	speech := &fakeSpeech{}
	chat := &fakeChat{}
	store := &fakeTagStore{}

	p := &Pipeline{
		Normalizer: newNormalizer(&fakeFiles{}, ocr, speech),
		Classifier: &Classifier{Chat: chat},
		Extractor:  &Extractor{Chat: chat},
		Reconciler: &TagReconciler{Store: store},
		TagStore:   store,
	}

	res, err := p.ProcessInputs(context.Background(), []model.RawInput{
		{Type: model.InputTypeText, Content: "   "},
	}, testBundle(t, "note"), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, TypeUnknown, res.Type)
	assert.Nil(t, res.CategoryID)
	assert.Equal(t, "输入内容为空", res.Content["error"])
	assert.Zero(t, chat.completeCalls)
	assert.Zero(t, chat.structuredCalls)
	assert.Zero(t, ocr.calls)
	assert.Zero(t, speech.calls)
}

func TestPipelineEndToEnd(t *testing.T) {
	userID := uuid.New()
	bundle := testBundle(t, "bill", "note")

	chat := &fakeChat{
		completeResp: "bill",
		structuredResp: map[string]any{
			"amount":   45.0,
			"raw_text": "星巴克 消费 45 元",
			"tags":     []any{"咖啡"},
		},
	}
	store := &fakeTagStore{}

	p := &Pipeline{
		Normalizer: newNormalizer(&fakeFiles{}, &fakeOCR{}, &fakeSpeech{}),
		Classifier: &Classifier{Chat: chat},
		Extractor:  &Extractor{Chat: chat},
		Reconciler: &TagReconciler{Store: store},
		TagStore:   store,
	}

	res, err := p.ProcessInputs(context.Background(), []model.RawInput{
		{Type: model.InputTypeText, Content: "星巴克 消费 45 元"},
	}, bundle, userID)
	require.NoError(t, err)

	assert.Equal(t, "bill", res.Type)
	require.NotNil(t, res.CategoryID)
	assert.Equal(t, bundle.NameToID["bill"], *res.CategoryID)
	assert.Equal(t, 45.0, res.Content["amount"])
	assert.Equal(t, []string{"咖啡"}, res.Tags)
	assert.Equal(t, []string{"咖啡"}, res.Content["tags"])

	// 新标签被落库
	require.Len(t, store.created, 1)
	assert.Equal(t, "咖啡", store.created[0].Name)
}

func TestPipelineListFailureDoesNotBlock(t *testing.T) {
	bundle := testBundle(t, "note")

	chat := &fakeChat{
		completeResp: "note",
		structuredResp: map[string]any{
			"raw_text": "x",
			"tags":     "想法",
		},
	}
	store := &fakeTagStore{listErr: errors.New("db down")}

	p := &Pipeline{
		Normalizer: newNormalizer(&fakeFiles{}, &fakeOCR{}, &fakeSpeech{}),
		Classifier: &Classifier{Chat: chat},
		Extractor:  &Extractor{Chat: chat},
		Reconciler: &TagReconciler{Store: store},
		TagStore:   store,
	}

	res, err := p.ProcessInputs(context.Background(), []model.RawInput{
		{Type: model.InputTypeText, Content: "随手记一条"},
	}, bundle, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"想法"}, res.Tags)
}
