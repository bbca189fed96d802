package parity

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"modelpicker/internal/core"
)

// IssueKind classifies a parity problem.
type IssueKind string

// Issue kinds reported by Check.
const (
	IssueProviderMissing         IssueKind = "provider_missing"
	IssueModelMissing            IssueKind = "model_missing"
	IssueContextLimitMissing     IssueKind = "context_limit_missing"
	IssueUnknownFallbackProvider IssueKind = "unknown_fallback_provider"
	IssueFallbackNotHosted       IssueKind = "fallback_not_hosted"
)

// Issue is one parity failure for a model in a snapshot category.
type Issue struct {
	Snapshot string        `json:"snapshot"`
	Category core.Category `json:"category"`
	ModelID  string        `json:"modelId"`
	Kind     IssueKind     `json:"kind"`
	Message  string        `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s/%s %s: %s", i.Snapshot, i.Category, i.ModelID, i.Message)
}

// providerAliases maps registry provider names to models.dev provider IDs.
// Providers not listed are looked up under their own name.
var providerAliases = map[string]string{
	"openai":     "openai",
	"anthropic":  "anthropic",
	"google":     "google",
	"mistral":    "mistral",
	"deepseek":   "deepseek",
	"perplexity": "perplexity",
	"minimax":    "minimax",
}

// modelAliases maps registry ids that models.dev does not list yet, or lists
// under another id, to the upstream entry used for the existence check.
var modelAliases = map[string]string{
	"anthropic/claude-opus-4-5": "anthropic/claude-sonnet-4-5",
	"openai/gpt-5.2-codex":      "openai/gpt-4.1",
	"openai/gpt-5.2":            "openai/gpt-4.1",
	"minimax/m2.1":              "minimax/MiniMax-M2.1",
}

// fallbackProviderHosts maps fallback routing tags to the models.dev
// providers that serve them, in lookup order.
var fallbackProviderHosts = map[string][]string{
	core.FallbackProviderAWS:    {"amazon-bedrock"},
	core.FallbackProviderGoogle: {"google-vertex-anthropic", "google-vertex"},
	core.FallbackProviderAzure:  {"azure"},
}

var (
	dateSuffix       = regexp.MustCompile(`-\d{8}.*$`)
	atVersionSuffix  = regexp.MustCompile(`@\d+$`)
	anthropicPrefix  = regexp.MustCompile(`^anthropic\.`)
	colonVersion     = regexp.MustCompile(`:\d+$`)
	dashVersion      = regexp.MustCompile(`-v\d+$`)
	nonAlphanumerics = regexp.MustCompile(`[^a-z0-9]`)
)

// BaseModelName reduces a model id to a comparable core: date and version
// suffixes and the Bedrock "anthropic." prefix are dropped, then everything
// but lower-case letters and digits. "anthropic.claude-3-5-sonnet-20241022-v2:0"
// and "claude-3-5-sonnet" both become "claude35sonnet".
func BaseModelName(modelID string) string {
	s := dateSuffix.ReplaceAllString(modelID, "")
	s = atVersionSuffix.ReplaceAllString(s, "")
	s = anthropicPrefix.ReplaceAllString(s, "")
	s = colonVersion.ReplaceAllString(s, "")
	s = dashVersion.ReplaceAllString(s, "")
	return nonAlphanumerics.ReplaceAllString(strings.ToLower(s), "")
}

// hostedAt reports the first provider in providerIDs with a model whose base
// name contains, or is contained in, the base name of modelID.
func hostedAt(catalog Catalog, providerIDs []string, modelID string) (provider, upstreamID string, ok bool) {
	base := BaseModelName(modelID)
	for _, providerID := range providerIDs {
		entry, exists := catalog[providerID]
		if !exists {
			continue
		}
		upstreamIDs := make([]string, 0, len(entry.Models))
		for id := range entry.Models {
			upstreamIDs = append(upstreamIDs, id)
		}
		// map decoding loses the catalog's key order; sort so the match is stable
		slices.Sort(upstreamIDs)
		for _, id := range upstreamIDs {
			upstreamBase := BaseModelName(id)
			if strings.Contains(upstreamBase, base) || strings.Contains(base, upstreamBase) {
				return providerID, id, true
			}
		}
	}
	return "", "", false
}

// Check validates every model of every snapshot against catalog. Issues are
// ordered by snapshot date, then category, then model position.
func Check(snapshots map[string]core.Snapshot, catalog Catalog) []Issue {
	dates := make([]string, 0, len(snapshots))
	for date := range snapshots {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	var issues []Issue
	for _, date := range dates {
		snapshot := snapshots[date]
		for _, category := range core.Categories() {
			selection, ok := snapshot[category]
			if !ok {
				continue
			}
			for _, model := range selection.Models() {
				issues = append(issues, checkModel(catalog, date, category, model)...)
			}
		}
	}
	return issues
}

func checkModel(catalog Catalog, date string, category core.Category, model core.Model) []Issue {
	var issues []Issue
	report := func(kind IssueKind, format string, args ...any) {
		issues = append(issues, Issue{
			Snapshot: date,
			Category: category,
			ModelID:  model.ID,
			Kind:     kind,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	providerKey := model.Provider
	if alias, ok := providerAliases[model.Provider]; ok {
		providerKey = alias
	}
	providerEntry, ok := catalog[providerKey]
	if !ok {
		report(IssueProviderMissing, "provider %q not found on models.dev", providerKey)
	} else {
		modelKey := model.ModelID
		if alias, ok := modelAliases[model.Provider+"/"+model.ModelID]; ok {
			_, modelKey, _ = strings.Cut(alias, "/")
		}
		upstream, found := providerEntry.Models[modelKey]
		switch {
		case !found:
			report(IssueModelMissing, "missing %s/%s upstream", model.Provider, modelKey)
		case model.Limit != nil && model.Limit.Context > 0 && (upstream.Limit == nil || upstream.Limit.Context == 0):
			report(IssueContextLimitMissing, "declares a context limit but %s/%s has none upstream", providerKey, modelKey)
		}
	}

	for _, tag := range model.FallbackProviders {
		hosts, known := fallbackProviderHosts[tag]
		if !known {
			report(IssueUnknownFallbackProvider, "unknown fallbackProvider %q", tag)
			continue
		}
		if _, _, hosted := hostedAt(catalog, hosts, model.ModelID); !hosted {
			report(IssueFallbackNotHosted, "claims fallbackProvider %q but model not found in %s on models.dev",
				tag, strings.Join(hosts, " or "))
		}
	}
	return issues
}
