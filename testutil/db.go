// Package testutil builds throwaway databases seeded with trees, species and predictions.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/omardr777/ai-dashboard/config"
	"github.com/omardr777/ai-dashboard/models"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.MigrateAll(db))
	return db
}

// Species inserts a species with the given English name and returns its id.
func Species(t *testing.T, db *gorm.DB, id uint, en string) uint {
	t.Helper()
	sp := models.Species{ID: id, CommonName: models.LocalizedName{"en": en}}
	require.NoError(t, db.Create(&sp).Error)
	return sp.ID
}

// Tree inserts a tree with one image. An empty compressed name leaves it NULL.
func Tree(t *testing.T, db *gorm.DB, id uint, image, compressed string) {
	t.Helper()
	img := models.Image{Name: image}
	if compressed != "" {
		img.NameCompressed = &compressed
	}
	tree := models.Tree{ID: id, Images: []models.Image{img}}
	require.NoError(t, db.Create(&tree).Error)
}

// Prediction inserts a prediction; zero species ids are stored as NULL.
func Prediction(t *testing.T, db *gorm.DB, treeID, predicted, labeled uint) uint {
	t.Helper()
	p := models.Prediction{TreeID: treeID, ModelName: "yolo-cls", ModelVersion: "v1"}
	if predicted != 0 {
		p.PredictedSpecieID = &predicted
	}
	if labeled != 0 {
		p.LabeledSpecieID = &labeled
	}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}
