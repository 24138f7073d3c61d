package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeRecipients(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []int64
	}{
		{"nil input", nil, nil},
		{"structured list", []RecipientState{{ID: 5}, {ID: 9}}, []int64{5, 9}},
		{"int slice", []int64{5, 9}, []int64{5, 9}},
		{"single number", 7, []int64{7}},
		{"float number", float64(7), []int64{7}},
		{"json array string", `[5,9]`, []int64{5, 9}},
		{"json object string", `{"id":5}`, []int64{5}},
		{"digit string", "42", []int64{42}},
		{"garbage string", "hello", nil},
		{"empty string", "", nil},
		{"unparseable json", `[5,`, nil},
		{"unsupported type", struct{}{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRecipients(tt.input)
			require.Len(t, got, len(tt.want))
			for i, id := range tt.want {
				assert.Equal(t, id, got[i].ID)
				assert.False(t, got[i].Read, "new recipients start unread")
			}
		})
	}
}

func TestNormalizeRecipientsDedupes(t *testing.T) {
	got := NormalizeRecipients(`[5,9,5,9,5]`)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(9), got[1].ID)
}

func TestMergeRecipientsPreservesReadState(t *testing.T) {
	now := time.Now()
	previous := []RecipientState{
		{ID: 5, Read: false},
		{ID: 9, Read: true, ReadAt: &now},
	}

	// 9 保留并继承已读状态，5 被移除，12 作为未读新增
	merged := MergeRecipients(NormalizeRecipients(`[9,12]`), previous)
	require.Len(t, merged, 2)
	assert.Equal(t, int64(9), merged[0].ID)
	assert.True(t, merged[0].Read)
	require.NotNil(t, merged[0].ReadAt)
	assert.Equal(t, int64(12), merged[1].ID)
	assert.False(t, merged[1].Read)
	assert.Nil(t, merged[1].ReadAt)
}

func TestEncodeRecipients(t *testing.T) {
	encoded, err := EncodeRecipients(nil)
	require.NoError(t, err)
	assert.Nil(t, encoded, "empty list encodes to absence, not []")

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	encoded, err = EncodeRecipients([]RecipientState{
		{ID: 5},
		{ID: 9, Read: true, ReadAt: &now},
	})
	require.NoError(t, err)
	require.NotNil(t, encoded)
	assert.JSONEq(t,
		`[{"id":5,"read":0,"read_at":null},{"id":9,"read":1,"read_at":"2026-03-01T10:00:00Z"}]`,
		*encoded)
}

func TestDecodeRecipientsRoundTrip(t *testing.T) {
	states := NormalizeRecipients(`[5,9]`)
	encoded, err := EncodeRecipients(states)
	require.NoError(t, err)

	decoded, ok := DecodeRecipients(encoded)
	require.True(t, ok)
	require.Len(t, decoded, 2)
	assert.Equal(t, states, decoded)

	summary := Summarize(decoded)
	assert.Equal(t, 2, summary.TotalCount)
	assert.Equal(t, 0, summary.ReadCount)
	assert.Equal(t, 2, summary.UnreadCount)
}

func TestDecodeRecipientsAbsence(t *testing.T) {
	decoded, ok := DecodeRecipients(nil)
	assert.True(t, ok)
	assert.Empty(t, decoded)

	decoded, ok = DecodeRecipients(strPtr(""))
	assert.True(t, ok)
	assert.Empty(t, decoded)

	decoded, ok = DecodeRecipients(strPtr("null"))
	assert.True(t, ok)
	assert.Empty(t, decoded)
}

func TestDecodeRecipientsLegacyShapes(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   []RecipientState
	}{
		{
			"read as boolean",
			`[{"id":5,"read":true,"read_at":"2026-03-01T10:00:00Z"}]`,
			[]RecipientState{{ID: 5, Read: true, ReadAt: timePtr(t, "2026-03-01T10:00:00Z")}},
		},
		{
			"read as string",
			`[{"id":5,"read":"1"}]`,
			[]RecipientState{{ID: 5, Read: true}},
		},
		{
			"id as string",
			`[{"id":"5","read":0}]`,
			[]RecipientState{{ID: 5}},
		},
		{
			"bare number array",
			`[5,9]`,
			[]RecipientState{{ID: 5}, {ID: 9}},
		},
		{
			"single object",
			`{"id":5,"read":1}`,
			[]RecipientState{{ID: 5, Read: true}},
		},
		{
			"single number",
			`7`,
			[]RecipientState{{ID: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeRecipients(&tt.stored)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRecipientsRepairsCorruption(t *testing.T) {
	// 双重编码的外层引号
	got, ok := DecodeRecipients(strPtr(`"[{\"id\":5,\"read\":1,\"read_at\":null}]"`))
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.True(t, got[0].Read)

	// JS 序列化漏出的 NaN / undefined
	got, ok = DecodeRecipients(strPtr(`[{"id":5,"read":NaN,"read_at":undefined}]`))
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.False(t, got[0].Read)
}

func TestDecodeRecipientsDigitFallback(t *testing.T) {
	got, ok := DecodeRecipients(strPtr(`id=5; id=9 oops`))
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(9), got[1].ID)
	assert.False(t, got[0].Read, "reconstructed entries are unread")
	assert.False(t, got[1].Read)
}

func TestDecodeRecipientsUnrecoverable(t *testing.T) {
	got, ok := DecodeRecipients(strPtr(`total garbage`))
	assert.False(t, ok)
	assert.Empty(t, got)
}

func timePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return &parsed
}
