package metainfo

import (
	"fmt"
	"regexp"
	"strings"

	"mediasorter/internal/config"
	"mediasorter/internal/services"
)

// GroupKind names a category of metainfo. At most one label per group is emitted.
type GroupKind string

const (
	GroupEdition       GroupKind = "edition"
	GroupResolution    GroupKind = "resolution"
	GroupSource        GroupKind = "source"
	GroupVideoCodec    GroupKind = "video_codec"
	GroupDynamicRange  GroupKind = "dynamic_range"
	GroupAudioChannels GroupKind = "audio_channels"
	GroupAudioCodec    GroupKind = "audio_codec"
	GroupAudioExtra    GroupKind = "audio_extra"
	GroupLanguage      GroupKind = "language"
	GroupRelease       GroupKind = "release"
)

// DefaultGroups returns the built-in group order.
func DefaultGroups() []GroupKind {
	return []GroupKind{
		GroupEdition,
		GroupResolution,
		GroupSource,
		GroupVideoCodec,
		GroupDynamicRange,
		GroupAudioChannels,
		GroupAudioCodec,
		GroupAudioExtra,
		GroupLanguage,
		GroupRelease,
	}
}

// Rule is one compiled catalog entry.
type Rule struct {
	Group   GroupKind
	Label   string
	Pattern *regexp.Regexp
}

// Format controls how a tag string is rendered.
type Format struct {
	Open      string
	Close     string
	Delimiter string
	Prefix    string
}

// Catalog is the ordered, immutable rule table.
type Catalog struct {
	groups []GroupKind
	rank   map[GroupKind]int
	rules  []Rule
	labels map[string]GroupKind
	format Format
}

// LoadCatalog compiles the configured rules in declared order. When no rules
// are configured the built-in catalog is used.
func LoadCatalog(cfg config.Metainfo) (*Catalog, error) {
	groups, err := resolveGroups(cfg.Groups)
	if err != nil {
		return nil, err
	}
	specs := cfg.Rules
	if len(specs) == 0 {
		specs = DefaultRules()
	}

	catalog := &Catalog{
		groups: groups,
		rank:   make(map[GroupKind]int, len(groups)),
		rules:  make([]Rule, 0, len(specs)),
		labels: make(map[string]GroupKind, len(specs)),
		format: Format{
			Open:      cfg.Open,
			Close:     cfg.Close,
			Delimiter: cfg.Delimiter,
			Prefix:    cfg.Prefix,
		},
	}
	for i, group := range groups {
		catalog.rank[group] = i
	}
	if catalog.format.Delimiter == "" {
		catalog.format.Delimiter = " "
	}

	for i, spec := range specs {
		label := strings.TrimSpace(spec.Label)
		if label == "" {
			return nil, configError(fmt.Sprintf("rule %d has an empty label", i+1), nil)
		}
		groupName := strings.ToLower(strings.TrimSpace(spec.Group))
		if groupName == "" {
			return nil, configError(fmt.Sprintf("rule %q has an empty group", label), nil)
		}
		group := GroupKind(groupName)
		if _, ok := catalog.rank[group]; !ok {
			return nil, configError(fmt.Sprintf("rule %q uses unknown group %q", label, spec.Group), nil)
		}
		if strings.TrimSpace(spec.Pattern) == "" {
			return nil, configError(fmt.Sprintf("rule %q has an empty pattern", label), nil)
		}
		pattern, err := regexp.Compile("(?i)" + spec.Pattern)
		if err != nil {
			return nil, configError(fmt.Sprintf("rule %q pattern does not compile", label), err)
		}
		catalog.rules = append(catalog.rules, Rule{Group: group, Label: label, Pattern: pattern})
		// A label names one group; several rules may share it inside that group.
		key := strings.ToLower(label)
		if owner, seen := catalog.labels[key]; seen && owner != group {
			return nil, configError(fmt.Sprintf("label %q declared in groups %q and %q", label, owner, group), nil)
		}
		catalog.labels[key] = group
	}
	return catalog, nil
}

func resolveGroups(names []string) ([]GroupKind, error) {
	if len(names) == 0 {
		return DefaultGroups(), nil
	}
	groups := make([]GroupKind, 0, len(names))
	seen := make(map[GroupKind]struct{}, len(names))
	for _, name := range names {
		group := GroupKind(strings.ToLower(strings.TrimSpace(name)))
		if group == "" {
			return nil, configError("metainfo.groups contains an empty name", nil)
		}
		if _, ok := seen[group]; ok {
			return nil, configError(fmt.Sprintf("group %q declared twice", group), nil)
		}
		seen[group] = struct{}{}
		groups = append(groups, group)
	}
	return groups, nil
}

func configError(message string, err error) error {
	return services.Wrap(services.ErrConfiguration, "metainfo", "load catalog", message, err)
}

// Rules returns the compiled rules in declared order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Groups returns the group emission order.
func (c *Catalog) Groups() []GroupKind {
	out := make([]GroupKind, len(c.groups))
	copy(out, c.groups)
	return out
}

// Format returns the tag rendering settings.
func (c *Catalog) Format() Format {
	return c.format
}

func (c *Catalog) groupOf(label string) (GroupKind, bool) {
	group, ok := c.labels[strings.ToLower(label)]
	return group, ok
}
