package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shengteng9/float-note-api/internal/model"
)

func TestBuildFieldSet(t *testing.T) {
	specs := []model.FieldSpec{
		{Name: "amount", FieldType: model.FieldTypeNumber, Required: true, Default: "0.0"},
		{Name: "merchant", FieldType: model.FieldTypeString},
		{Name: "paid_at", FieldType: model.FieldTypeDate},
	}

	s, err := Build(specs)
	require.NoError(t, err)

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"amount", "merchant", "paid_at", "raw_text", "tags"}, names)
}

func TestBuildCoercesStringDefaultToNumber(t *testing.T) {
	s, err := Build([]model.FieldSpec{
		{Name: "amount", FieldType: model.FieldTypeNumber, Required: true, Default: "0.0"},
	})
	require.NoError(t, err)

	f, ok := s.Lookup("amount")
	require.True(t, ok)
	assert.Equal(t, float64(0), f.Default)
	assert.False(t, f.Nullable())
}

func TestBuildUnsupportedFieldType(t *testing.T) {
	_, err := Build([]model.FieldSpec{
		{Name: "price", FieldType: "currency"},
	})

	var uerr *UnsupportedFieldTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "currency", uerr.FieldType)
}

func TestBuildBadDefault(t *testing.T) {
	_, err := Build([]model.FieldSpec{
		{Name: "count", FieldType: model.FieldTypeNumber, Default: "not-a-number"},
	})

	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "count", berr.FieldName)
}

func TestRequiredWithoutDefaultIsNullable(t *testing.T) {
	// 既有策略：没有默认值的字段一律可空，required 不改变这一点
	s, err := Build([]model.FieldSpec{
		{Name: "payee", FieldType: model.FieldTypeString, Required: true},
	})
	require.NoError(t, err)

	f, ok := s.Lookup("payee")
	require.True(t, ok)
	assert.True(t, f.Nullable())

	out, err := s.Validate(map[string]any{"raw_text": "转账给小王"})
	require.NoError(t, err)
	assert.Nil(t, out["payee"])
}

func TestValidateDropsUnknownAndFillsDefaults(t *testing.T) {
	s, err := Build([]model.FieldSpec{
		{Name: "amount", FieldType: model.FieldTypeNumber, Required: true, Default: 0},
		{Name: "currency", FieldType: model.FieldTypeString, Default: "CNY"},
	})
	require.NoError(t, err)

	out, err := s.Validate(map[string]any{
		"amount":   "12.5",
		"raw_text": "午饭 12.5 元",
		"bogus":    "dropped",
	})
	require.NoError(t, err)

	assert.Equal(t, 12.5, out["amount"])
	assert.Equal(t, "CNY", out["currency"])
	assert.Equal(t, "午饭 12.5 元", out["raw_text"])
	assert.NotContains(t, out, "bogus")
}

func TestValidateTimestampFormats(t *testing.T) {
	s, err := Build([]model.FieldSpec{
		{Name: "due_at", FieldType: model.FieldTypeDate},
	})
	require.NoError(t, err)

	for _, ts := range []string{"2026-09-01 10:30:00", "2026-09-01"} {
		out, err := s.Validate(map[string]any{"due_at": ts, "raw_text": "x"})
		require.NoError(t, err)
		assert.Equal(t, ts, out["due_at"])
	}

	_, err = s.Validate(map[string]any{"due_at": "next tuesday", "raw_text": "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_at", verr.FieldName)
}

func TestValidateTagsShapes(t *testing.T) {
	s, err := Build(nil)
	require.NoError(t, err)

	for _, tags := range []any{"美食", []any{"美食", "出行"}, []string{"美食"}} {
		out, err := s.Validate(map[string]any{"raw_text": "x", "tags": tags})
		require.NoError(t, err)
		assert.Equal(t, tags, out["tags"])
	}
}
