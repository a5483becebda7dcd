package utils

import "github.com/omardr777/ai-dashboard/models"

// MatchStatus classifies a tree row by comparing its predicted and labeled species ids.
func MatchStatus(row models.TreeRow) string {
	if row.PredictedSpecieID == nil || row.LabeledSpecieID == nil {
		return models.MatchStatusUnknown
	}
	if *row.PredictedSpecieID == *row.LabeledSpecieID {
		return models.MatchStatusMatch
	}
	return models.MatchStatusMismatch
}

// IsMismatch reports whether the row would be picked up by a sync run.
func IsMismatch(row models.TreeRow) bool {
	return MatchStatus(row) == models.MatchStatusMismatch
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
