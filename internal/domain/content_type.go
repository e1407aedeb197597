package domain

// ContentType classifies what a bookmark points at.
type ContentType string

const (
	TypeLesson  ContentType = "lesson"
	TypePrompt  ContentType = "prompt"
	TypeModule  ContentType = "module"
	TypeUseCase ContentType = "usecase"
	TypeTool    ContentType = "tool"
)

// TypeInfo is the display descriptor of a content type.
type TypeInfo struct {
	Type  ContentType `json:"type"`
	Label string      `json:"label"`
	Icon  string      `json:"icon"`
	Color string      `json:"color"`
}

var contentTypes = []TypeInfo{
	{Type: TypeLesson, Label: "Lesson", Icon: "📚", Color: "#4A90E2"},
	{Type: TypePrompt, Label: "Prompt", Icon: "💡", Color: "#10b981"},
	{Type: TypeModule, Label: "Module", Icon: "🎯", Color: "#f59e0b"},
	{Type: TypeUseCase, Label: "Use Case", Icon: "📈", Color: "#8b5cf6"},
	{Type: TypeTool, Label: "Tool", Icon: "🔧", Color: "#ef4444"},
}

// ContentTypes returns the known content types in display order.
func ContentTypes() []TypeInfo {
	out := make([]TypeInfo, len(contentTypes))
	copy(out, contentTypes)
	return out
}

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	for _, info := range contentTypes {
		if info.Type == t {
			return true
		}
	}
	return false
}

// ParseContentType maps s to a known type, falling back to lesson.
func ParseContentType(s string) ContentType {
	t := ContentType(s)
	if t.Valid() {
		return t
	}
	return TypeLesson
}
