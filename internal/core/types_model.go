package core

import "slices"

// Category is one of the fixed recommendation use cases.
type Category string

// Supported categories, in declaration order.
const (
	CategoryCoding        Category = "coding"
	CategorySummarization Category = "summarization"
	CategoryResearch      Category = "research"
)

// Categories returns the closed category enumeration in declaration order.
func Categories() []Category {
	return []Category{CategoryCoding, CategorySummarization, CategoryResearch}
}

// ModelCost is the price per million tokens in USD.
type ModelCost struct {
	Input  float64 `json:"input" yaml:"input"`
	Output float64 `json:"output" yaml:"output"`
}

// ModelLimit holds context window and max output token counts.
type ModelLimit struct {
	Context int `json:"context" yaml:"context"`
	Output  int `json:"output" yaml:"output"`
}

// ModelModalities lists accepted input and produced output modalities.
type ModelModalities struct {
	Input  []string `json:"input" yaml:"input"`
	Output []string `json:"output" yaml:"output"`
}

// Model is a single recommendable model as curated in a snapshot.
// Capability flags are pointers so an unset flag stays absent in JSON.
type Model struct {
	ID                 string           `json:"id" yaml:"id"`
	ModelID            string           `json:"modelId" yaml:"modelId"`
	Provider           string           `json:"provider" yaml:"provider"`
	Name               string           `json:"name" yaml:"name"`
	Description        string           `json:"description,omitempty" yaml:"description,omitempty"`
	FallbackProviders  []string         `json:"fallbackProviders" yaml:"fallbackProviders"`
	Knowledge          string           `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`
	ReleaseDate        string           `json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
	LastUpdated        string           `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Modalities         *ModelModalities `json:"modalities,omitempty" yaml:"modalities,omitempty"`
	Attachment         *bool            `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Reasoning          *bool            `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	ToolCall           *bool            `json:"toolCall,omitempty" yaml:"toolCall,omitempty"`
	StructuredOutput   *bool            `json:"structuredOutput,omitempty" yaml:"structuredOutput,omitempty"`
	TemperatureControl *bool            `json:"temperatureControl,omitempty" yaml:"temperatureControl,omitempty"`
	OpenWeights        *bool            `json:"openWeights,omitempty" yaml:"openWeights,omitempty"`
	Cost               *ModelCost       `json:"cost,omitempty" yaml:"cost,omitempty"`
	Limit              *ModelLimit      `json:"limit,omitempty" yaml:"limit,omitempty"`
	Notes              string           `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Clone returns a deep copy of the model. FallbackProviders is never nil in
// the copy so it always encodes as a JSON array.
func (m Model) Clone() Model {
	out := m
	out.FallbackProviders = append(make([]string, 0, len(m.FallbackProviders)), m.FallbackProviders...)
	if m.Modalities != nil {
		out.Modalities = &ModelModalities{
			Input:  cloneStrings(m.Modalities.Input),
			Output: cloneStrings(m.Modalities.Output),
		}
	}
	out.Attachment = cloneBool(m.Attachment)
	out.Reasoning = cloneBool(m.Reasoning)
	out.ToolCall = cloneBool(m.ToolCall)
	out.StructuredOutput = cloneBool(m.StructuredOutput)
	out.TemperatureControl = cloneBool(m.TemperatureControl)
	out.OpenWeights = cloneBool(m.OpenWeights)
	if m.Cost != nil {
		c := *m.Cost
		out.Cost = &c
	}
	if m.Limit != nil {
		l := *m.Limit
		out.Limit = &l
	}
	return out
}

// Has reports whether a capability flag is set to true.
func Has(flag *bool) bool {
	return flag != nil && *flag
}

// CategorySelection is the recommendation for one category in one snapshot.
type CategorySelection struct {
	Primary   Model   `json:"primary" yaml:"primary"`
	Fallbacks []Model `json:"fallbacks" yaml:"fallbacks"`
}

// Models returns the primary followed by the fallbacks in preference order.
func (s CategorySelection) Models() []Model {
	models := make([]Model, 0, 1+len(s.Fallbacks))
	models = append(models, s.Primary)
	return append(models, s.Fallbacks...)
}

// Clone returns a deep copy with a non-nil fallback slice.
func (s CategorySelection) Clone() CategorySelection {
	fallbacks := make([]Model, 0, len(s.Fallbacks))
	for _, m := range s.Fallbacks {
		fallbacks = append(fallbacks, m.Clone())
	}
	return CategorySelection{Primary: s.Primary.Clone(), Fallbacks: fallbacks}
}

// Snapshot maps every supported category to its selection.
type Snapshot map[Category]CategorySelection

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for category, selection := range s {
		out[category] = selection.Clone()
	}
	return out
}

// Selection is the resolved answer for a (date, category) lookup.
type Selection struct {
	Date      string   `json:"date"`
	Category  Category `json:"category"`
	Primary   Model    `json:"primary"`
	Fallbacks []Model  `json:"fallbacks"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
