// Package prompt builds the seven prompt segments (quality, scene, glamour,
// body, aesthetic, pose, negative) from YAML feature catalogs. Each catalog
// field offers named options; a composer turns the user's selections into a
// comma-separated fragment.
package prompt

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is one catalog field's choices. Catalogs may write a field either
// as a plain list (the choice is the tag) or as a key→value map (the choice
// is a display key, the value is the tag). YAML order is preserved.
type Options struct {
	order  []string
	values map[string]string
}

// UnmarshalYAML accepts both the sequence and the mapping form.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	o.values = make(map[string]string)
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			o.order = append(o.order, item.Value)
			o.values[item.Value] = item.Value
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			o.order = append(o.order, key)
			o.values[key] = node.Content[i+1].Value
		}
	default:
		return fmt.Errorf("options must be a list or a map, got yaml kind %d", node.Kind)
	}
	return nil
}

// Keys returns the option keys in catalog order.
func (o Options) Keys() []string {
	return o.order
}

// Value resolves a choice to its tag text. Unknown choices fall back to the
// choice itself so hand-typed tags keep working.
func (o Options) Value(choice string) string {
	if v, ok := o.values[choice]; ok {
		return v
	}
	return choice
}

// Random returns a uniformly chosen option tag, or "" for an empty field.
func (o Options) Random() string {
	if len(o.order) == 0 {
		return ""
	}
	return o.values[o.order[rand.Intn(len(o.order))]]
}

// RandomKey returns a uniformly chosen option key, or "" for an empty field.
func (o Options) RandomKey() string {
	if len(o.order) == 0 {
		return ""
	}
	return o.order[rand.Intn(len(o.order))]
}

func (o Options) empty() bool {
	return len(o.order) == 0
}

// FeatureSet is an ordered collection of catalog fields, as used by the
// glamour, body and pose catalogs.
type FeatureSet struct {
	order  []string
	fields map[string]Options
}

func (fs *FeatureSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("feature catalog must be a mapping, got yaml kind %d", node.Kind)
	}
	fs.fields = make(map[string]Options)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var opts Options
		if err := node.Content[i+1].Decode(&opts); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		fs.order = append(fs.order, key)
		fs.fields[key] = opts
	}
	return nil
}

// Fields returns the field names in catalog order.
func (fs FeatureSet) Fields() []string {
	return fs.order
}

// Field returns the options for one field.
func (fs FeatureSet) Field(name string) (Options, bool) {
	o, ok := fs.fields[name]
	return o, ok
}

// LoadFeatureSet reads a field→options catalog from a YAML file.
func LoadFeatureSet(path string) (FeatureSet, error) {
	var fs FeatureSet
	data, err := os.ReadFile(path)
	if err != nil {
		return fs, fmt.Errorf("failed to read feature catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fs, fmt.Errorf("failed to parse feature catalog %s: %w", path, err)
	}
	return fs, nil
}

// QualityCatalog backs the quality composer: fixed boilerplate tags plus
// named style strings.
type QualityCatalog struct {
	Boilerplate []string `yaml:"boilerplate"`
	Styles      Options  `yaml:"styles"`
}

func LoadQualityCatalog(path string) (QualityCatalog, error) {
	var c QualityCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read quality catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse quality catalog %s: %w", path, err)
	}
	return c, nil
}

// SceneCatalog backs the scene composer, one option set per category.
type SceneCatalog struct {
	Framing     Options `yaml:"framing"`
	Angle       Options `yaml:"angle"`
	Emotion     Options `yaml:"emotion"`
	TimeOfDay   Options `yaml:"time_of_day"`
	Environment Options `yaml:"environment"`
	Lighting    Options `yaml:"lighting"`
}

func LoadSceneCatalog(path string) (SceneCatalog, error) {
	var c SceneCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read scene catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse scene catalog %s: %w", path, err)
	}
	return c, nil
}

// NegativeCatalog backs the negative composer.
type NegativeCatalog struct {
	Boilerplate []string `yaml:"boilerplate"`
}

func LoadNegativeCatalog(path string) (NegativeCatalog, error) {
	var c NegativeCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read negative catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse negative catalog %s: %w", path, err)
	}
	return c, nil
}

// AestheticCatalog backs the aesthetic composer: named style strings that
// can blend two at a time.
type AestheticCatalog struct {
	Styles Options `yaml:"styles"`
}

func LoadAestheticCatalog(path string) (AestheticCatalog, error) {
	var c AestheticCatalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read aesthetic catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse aesthetic catalog %s: %w", path, err)
	}
	return c, nil
}
