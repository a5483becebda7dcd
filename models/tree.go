package models

type Tree struct {
	ID                 uint    `json:"id" gorm:"primaryKey"`
	RecognizedSpecieID *uint   `json:"recognized_specie_id"`
	Images             []Image `json:"images,omitempty" gorm:"many2many:trees_images;"`
}

func (Tree) TableName() string { return "trees" }

type Image struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	Name           string  `json:"name" gorm:"not null"`
	NameCompressed *string `json:"name_compressed"`
}

func (Image) TableName() string { return "images" }

// Prediction holds one model's guess and the reviewer's label for a tree.
// There is at most one row per (tree, model name, model version).
type Prediction struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	TreeID            uint   `json:"tree_id" gorm:"not null;index"`
	PredictedSpecieID *uint  `json:"predicted_specie_id"`
	LabeledSpecieID   *uint  `json:"labeled_specie_id"`
	ModelName         string `json:"model_name"`
	ModelVersion      string `json:"model_version"`
}

func (Prediction) TableName() string { return "predictions" }

// TreeRow is one line of the dashboard grid: a tree image with its predicted and labeled species.
type TreeRow struct {
	TreeID              uint    `json:"tree_id"`
	ImageName           string  `json:"image_name"`
	CompressedImageName *string `json:"compressed_image_name"`
	PredictedSpecieID   *uint   `json:"predicted_specie_id"`
	PredictedCommonName *string `json:"predicted_common_name"`
	LabeledSpecieID     *uint   `json:"labeled_specie_id"`
	LabeledCommonName   *string `json:"labeled_common_name"`
}

type UpdateSpeciesRequest struct {
	PredictedSpecieID uint   `json:"predicted_specie_id" binding:"required"`
	LabeledSpecieID   uint   `json:"labeled_specie_id" binding:"required"`
	ModelName         string `json:"model_name" binding:"required"`
	ModelVersion      string `json:"model_version" binding:"required"`
}

type UpdateSpeciesResponse struct {
	TreeID       uint   `json:"tree_id"`
	PredictionID uint   `json:"prediction_id"`
	Message      string `json:"message"`
}
