package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
)

// ListTrees returns one row per (prediction, tree image).
func (s *Store) ListTrees(ctx context.Context) ([]models.TreeRow, error) {
	query := `
SELECT
    t.id              AS tree_id,
    i.name            AS image_name,
    i.name_compressed AS compressed_image_name,
    p.predicted_specie_id,
    ` + s.englishName("ps") + ` AS predicted_common_name,
    p.labeled_specie_id,
    ` + s.englishName("ls") + ` AS labeled_common_name
FROM trees         AS t
JOIN predictions   AS p  ON p.tree_id = t.id
JOIN trees_images  AS ti ON ti.tree_id = t.id
JOIN images        AS i  ON i.id = ti.image_id
LEFT JOIN species  AS ps ON ps.id = p.predicted_specie_id
LEFT JOIN species  AS ls ON ls.id = p.labeled_specie_id
ORDER BY t.id, p.id, i.id`

	var rows []models.TreeRow
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, apperr.Store("list trees", err)
	}
	if rows == nil {
		rows = []models.TreeRow{}
	}
	return rows, nil
}

// UpdateTreeSpecies upserts the prediction for (tree, model name, model version) and
// sets the tree's recognized species to the label, in one transaction.
func (s *Store) UpdateTreeSpecies(ctx context.Context, treeID uint, req models.UpdateSpeciesRequest) (uint, error) {
	const op = "update tree species"
	var predictionID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tree models.Tree
		if err := tx.Select("id").Take(&tree, treeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(op, "Tree not found")
			}
			return err
		}

		predicted, labeled := req.PredictedSpecieID, req.LabeledSpecieID
		var existing models.Prediction
		err := tx.Where("tree_id = ? AND model_name = ? AND model_version = ?", treeID, req.ModelName, req.ModelVersion).
			Take(&existing).Error
		switch {
		case err == nil:
			predictionID = existing.ID
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"predicted_specie_id": predicted,
				"labeled_specie_id":   labeled,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			prediction := models.Prediction{
				TreeID:            treeID,
				PredictedSpecieID: &predicted,
				LabeledSpecieID:   &labeled,
				ModelName:         req.ModelName,
				ModelVersion:      req.ModelVersion,
			}
			if err := tx.Create(&prediction).Error; err != nil {
				return err
			}
			predictionID = prediction.ID
		default:
			return err
		}

		return tx.Model(&models.Tree{}).Where("id = ?", treeID).
			Update("recognized_specie_id", labeled).Error
	})
	if err != nil {
		if apperr.KindOf(err) != "" {
			return 0, err
		}
		return 0, apperr.Store(op, err)
	}
	return predictionID, nil
}
