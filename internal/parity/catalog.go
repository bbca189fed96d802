// Package parity cross-checks the snapshot dataset against the public
// models.dev catalog: every recommended model must exist upstream and every
// fallback provider tag must point at a provider that actually hosts it.
package parity

// Catalog is the models.dev api.json document: provider ID to provider.
type Catalog map[string]Provider

// Provider is one models.dev provider entry.
type Provider struct {
	ID     string           `json:"id"`
	Name   string           `json:"name,omitempty"`
	Env    []string         `json:"env,omitempty"`
	NPM    string           `json:"npm,omitempty"`
	API    string           `json:"api,omitempty"`
	Doc    string           `json:"doc,omitempty"`
	Models map[string]Model `json:"models"`
}

// Model is one models.dev model entry. Only the fields the checker and the
// CLI display are decoded.
type Model struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Family      string      `json:"family,omitempty"`
	Attachment  bool        `json:"attachment"`
	Reasoning   bool        `json:"reasoning"`
	ToolCall    bool        `json:"tool_call"`
	Temperature bool        `json:"temperature"`
	Knowledge   string      `json:"knowledge,omitempty"`
	ReleaseDate string      `json:"release_date,omitempty"`
	LastUpdated string      `json:"last_updated,omitempty"`
	OpenWeights bool        `json:"open_weights"`
	Modalities  *Modalities `json:"modalities,omitempty"`
	Cost        *Cost       `json:"cost,omitempty"`
	Limit       *Limit      `json:"limit,omitempty"`
}

// Modalities lists accepted and produced content kinds.
type Modalities struct {
	Input  []string `json:"input,omitempty"`
	Output []string `json:"output,omitempty"`
}

// Cost is USD per million tokens.
type Cost struct {
	Input      float64  `json:"input"`
	Output     float64  `json:"output"`
	CacheRead  *float64 `json:"cache_read,omitempty"`
	CacheWrite *float64 `json:"cache_write,omitempty"`
}

// Limit holds token limits.
type Limit struct {
	Context int `json:"context"`
	Output  int `json:"output"`
}

// Lookup returns the upstream model for provider/modelID.
func (c Catalog) Lookup(provider, modelID string) (Model, bool) {
	p, ok := c[provider]
	if !ok {
		return Model{}, false
	}
	m, ok := p.Models[modelID]
	return m, ok
}

// ModelCount returns the number of models across all providers.
func (c Catalog) ModelCount() int {
	n := 0
	for _, p := range c {
		n += len(p.Models)
	}
	return n
}
