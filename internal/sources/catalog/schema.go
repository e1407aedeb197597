package catalog

// Item is one bookmarkable entry of the catalog file.
type Item struct {
	ID          string         `yaml:"id,omitempty"`
	URL         string         `yaml:"url"`
	Type        string         `yaml:"type,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Source      string         `yaml:"source,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
}

// Config is the root structure of the catalog YAML.
// The structure is: - CategoryName: [ - Item Title: { url, type, ... } ]
//
//	- Training:
//	    - Session 1.1 Boolean Basics:
//	        url: https://hub.example.com/training#session-1-1
//	        type: lesson
type Config []map[string][]map[string]Item
