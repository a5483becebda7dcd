package store

import (
	"context"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
)

// FindMismatches returns every prediction whose predicted and labeled species ids are
// both set and differ, one row per tree image. A dangling species reference leaves
// the common name nil.
func (s *Store) FindMismatches(ctx context.Context) ([]models.Mismatch, error) {
	query := `
SELECT
    p.tree_id,
    p.predicted_specie_id,
    p.labeled_specie_id,
    ` + s.englishName("ps") + ` AS predicted_common_name,
    ` + s.englishName("ls") + ` AS labeled_common_name,
    i.name            AS image_name,
    i.name_compressed AS compressed_image_name
FROM predictions   AS p
JOIN trees_images  AS ti ON ti.tree_id = p.tree_id
JOIN images        AS i  ON i.id = ti.image_id
LEFT JOIN species  AS ps ON ps.id = p.predicted_specie_id
LEFT JOIN species  AS ls ON ls.id = p.labeled_specie_id
WHERE p.predicted_specie_id <> p.labeled_specie_id
  AND p.labeled_specie_id IS NOT NULL
  AND p.predicted_specie_id IS NOT NULL
ORDER BY p.tree_id, p.id, i.id`

	var rows []models.Mismatch
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, apperr.Store("query failed", err)
	}
	return rows, nil
}
