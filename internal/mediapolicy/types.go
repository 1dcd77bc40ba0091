package mediapolicy

import "gopkg.in/yaml.v3"

// MediaType describes one accepted upload mime type
type MediaType struct {
	// Mime type identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string   `yaml:"display_name" json:"display_name"`
	Extensions  []string `yaml:"extensions" json:"extensions"`

	// MaxBytes caps a single upload of this type. 0 = no cap.
	MaxBytes int64 `yaml:"max_bytes" json:"max_bytes"`

	// Preview controls whether the processing pipeline renders a web
	// preview for this type
	Preview bool `yaml:"preview" json:"preview"`
}

// Variant describes one derived rendition the pipeline produces
type Variant struct {
	// Variant name (set during YAML unmarshaling)
	Name string `yaml:"-" json:"name"`

	MaxEdge   int    `yaml:"max_edge" json:"max_edge"`
	Format    string `yaml:"format" json:"format"`
	Watermark bool   `yaml:"watermark" json:"watermark"`
}

// UploadPolicy is the full media policy: which mime types are accepted
// and which renditions exist
type UploadPolicy struct {
	Policy   string      `yaml:"policy" json:"policy"`
	Types    []MediaType `yaml:"-" json:"types"`    // Ordered slice, populated by custom unmarshaler
	Variants []Variant   `yaml:"-" json:"variants"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML implements custom YAML unmarshaling to preserve the
// declaration order of types and variants from the YAML file
func (p *UploadPolicy) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == "policy" {
			p.Policy = node.Content[i+1].Value
			break
		}
	}

	// Decode into maps first to get the full data
	type policyOnly struct {
		Types    map[string]MediaType `yaml:"types"`
		Variants map[string]Variant   `yaml:"variants"`
	}
	var m policyOnly
	if err := node.Decode(&m); err != nil {
		return err
	}

	// Extract keys in YAML order and build the slices
	for i := 0; i < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "types":
			typesNode := node.Content[i+1]
			// Content alternates: key, value, key, value...
			for j := 0; j < len(typesNode.Content); j += 2 {
				id := typesNode.Content[j].Value
				if mt, ok := m.Types[id]; ok {
					mt.ID = id
					p.Types = append(p.Types, mt)
				}
			}
		case "variants":
			variantsNode := node.Content[i+1]
			for j := 0; j < len(variantsNode.Content); j += 2 {
				name := variantsNode.Content[j].Value
				if v, ok := m.Variants[name]; ok {
					v.Name = name
					p.Variants = append(p.Variants, v)
				}
			}
		}
	}

	return nil
}
