package store

import (
	"context"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
)

func (s *Store) ListSpecies(ctx context.Context) ([]models.SpeciesRow, error) {
	query := "SELECT id, " + s.englishName("s") + " AS common_name FROM species AS s ORDER BY id"

	var rows []models.SpeciesRow
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, apperr.Store("list species", err)
	}
	if rows == nil {
		rows = []models.SpeciesRow{}
	}
	return rows, nil
}
