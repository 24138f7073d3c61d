package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckUploadRejectsExecutables(t *testing.T) {
	assert.Error(t, CheckUpload([]byte{0x4D, 0x5A, 0x90, 0x00}))
	assert.Error(t, CheckUpload([]byte{0x7F, 0x45, 0x4C, 0x46, 0x02}))
	assert.NoError(t, CheckUpload([]byte("%PDF-1.4 plain document body")))
	assert.NoError(t, CheckUpload(nil))
}

func TestCheckUploadRejectsEmbeddedScripts(t *testing.T) {
	assert.Error(t, CheckUpload([]byte(`<html><script>alert(1)</script></html>`)))
	assert.Error(t, CheckUpload([]byte(`click javascript:void(0)`)))
}

func TestContentFilterRejectsInjection(t *testing.T) {
	cf := NewContentFilter()

	assert.ErrorIs(t, cf.Check(`hello <script src="x.js">`), ErrContentRejected)
	assert.ErrorIs(t, cf.Check(`<iframe src="evil">`), ErrContentRejected)
	assert.NoError(t, cf.Check("We would like to schedule a meeting next week."))
}

func TestContentFilterRequiresMultipleSpamHits(t *testing.T) {
	cf := NewContentFilter()

	// 单个关键词放行
	assert.NoError(t, cf.Check("Our casino outreach program needs volunteers."))

	assert.ErrorIs(t,
		cf.Check("Free money! Click here now, guaranteed lottery winner!"),
		ErrContentRejected)
}
