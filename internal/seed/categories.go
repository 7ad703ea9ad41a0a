package seed

import (
	_ "embed"
	"fmt"

	"eventscape/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed categories.yaml
var categoriesYAML []byte

// BuiltInCategory is one entry of the embedded category catalogue.
type BuiltInCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// BuiltInCategories parses the embedded catalogue.
func BuiltInCategories() ([]BuiltInCategory, error) {
	var items []BuiltInCategory
	if err := yaml.Unmarshal(categoriesYAML, &items); err != nil {
		return nil, fmt.Errorf("parse category catalogue: %w", err)
	}
	return items, nil
}

// Categories seeds the built-in catalogue. Names are not unique in the
// schema, so an existing row with the same name is updated in place instead
// of duplicated.
func Categories(db *gorm.DB) ([]models.Category, error) {
	items, err := BuiltInCategories()
	if err != nil {
		return nil, err
	}

	out := make([]models.Category, 0, len(items))
	for _, item := range items {
		var category models.Category
		err := db.Where("name = ?", item.Name).
			Attrs(models.Category{Description: item.Description, Icon: item.Icon}).
			FirstOrCreate(&category).Error
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", item.Name, err)
		}
		out = append(out, category)
	}
	return out, nil
}
