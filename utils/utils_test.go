package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omardr777/ai-dashboard/models"
)

func uptr(v uint) *uint { return &v }

func TestMatchStatus(t *testing.T) {
	assert.Equal(t, models.MatchStatusMatch, MatchStatus(models.TreeRow{PredictedSpecieID: uptr(1), LabeledSpecieID: uptr(1)}))
	assert.Equal(t, models.MatchStatusMismatch, MatchStatus(models.TreeRow{PredictedSpecieID: uptr(1), LabeledSpecieID: uptr(2)}))
	assert.Equal(t, models.MatchStatusUnknown, MatchStatus(models.TreeRow{PredictedSpecieID: uptr(1)}))
	assert.Equal(t, models.MatchStatusUnknown, MatchStatus(models.TreeRow{LabeledSpecieID: uptr(1)}))
	assert.True(t, IsMismatch(models.TreeRow{PredictedSpecieID: uptr(3), LabeledSpecieID: uptr(4)}))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "images2/Acacia/img1.jpg", ObjectKey("images2", "Acacia", "img1.jpg"))
	assert.Equal(t, "images2/Ficus religiosa/img1.jpg", ObjectKey("images2/", "Ficus religiosa", "img1.jpg"))
	assert.Equal(t, "Acacia/img1.jpg", ObjectKey("", "Acacia", "img1.jpg"))
}

func TestDeref(t *testing.T) {
	s := "Acacia"
	assert.Equal(t, "Acacia", Deref(&s))
	assert.Equal(t, "", Deref(nil))
}
