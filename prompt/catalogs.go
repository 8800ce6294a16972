package prompt

import (
	"fmt"
	"path/filepath"
)

// Catalog file names under the feature directory.
const (
	GlamourFile   = "glamour.yaml"
	BodyFile      = "body.yaml"
	PoseFile      = "pose.yaml"
	QualityFile   = "quality.yaml"
	SceneFile     = "scene.yaml"
	AestheticFile = "aesthetic.yaml"
	NegativeFile  = "negative.yaml"
)

// Catalogs bundles every loaded feature catalog.
type Catalogs struct {
	Glamour   FeatureSet
	Body      FeatureSet
	Pose      FeatureSet
	Quality   QualityCatalog
	Scene     SceneCatalog
	Aesthetic AestheticCatalog
	Negative  NegativeCatalog
}

// LoadCatalogs reads all catalogs from dir. The first failure aborts the
// load; callers that can run without composition may treat the error as a
// warning and keep the zero value.
func LoadCatalogs(dir string) (Catalogs, error) {
	var c Catalogs
	var err error

	if c.Glamour, err = LoadFeatureSet(filepath.Join(dir, GlamourFile)); err != nil {
		return c, fmt.Errorf("glamour catalog: %w", err)
	}
	if c.Body, err = LoadFeatureSet(filepath.Join(dir, BodyFile)); err != nil {
		return c, fmt.Errorf("body catalog: %w", err)
	}
	if c.Pose, err = LoadFeatureSet(filepath.Join(dir, PoseFile)); err != nil {
		return c, fmt.Errorf("pose catalog: %w", err)
	}
	if c.Quality, err = LoadQualityCatalog(filepath.Join(dir, QualityFile)); err != nil {
		return c, fmt.Errorf("quality catalog: %w", err)
	}
	if c.Scene, err = LoadSceneCatalog(filepath.Join(dir, SceneFile)); err != nil {
		return c, fmt.Errorf("scene catalog: %w", err)
	}
	if c.Aesthetic, err = LoadAestheticCatalog(filepath.Join(dir, AestheticFile)); err != nil {
		return c, fmt.Errorf("aesthetic catalog: %w", err)
	}
	if c.Negative, err = LoadNegativeCatalog(filepath.Join(dir, NegativeFile)); err != nil {
		return c, fmt.Errorf("negative catalog: %w", err)
	}
	return c, nil
}
