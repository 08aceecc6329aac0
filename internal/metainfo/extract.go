package metainfo

import (
	"sort"
	"strings"

	"mediasorter/internal/textutil"
)

// TagString is the ordered set of labels extracted from one filename.
type TagString struct {
	labels []string
	format Format
}

// Labels returns the emitted labels in group order.
func (t TagString) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Empty reports whether no rule matched.
func (t TagString) Empty() bool {
	return len(t.labels) == 0
}

// String joins the labels with the catalog delimiter.
func (t TagString) String() string {
	return strings.Join(t.labels, t.format.Delimiter)
}

// Bracketed wraps the tag string in the catalog brackets. Empty tags render as "".
func (t TagString) Bracketed() string {
	if t.Empty() {
		return ""
	}
	return t.format.Open + t.String() + t.format.Close
}

// Suffix renders the prefix and bracketed tags appended before an extension.
func (t TagString) Suffix() string {
	if t.Empty() {
		return ""
	}
	return t.format.Prefix + t.Bracketed()
}

type match struct {
	group GroupKind
	label string
}

// Extract scans filename against catalog and returns the winning label per
// group. A tag block appended by an earlier run is recognised and its labels
// are kept as the winners for their groups, so re-extracting a tagged name
// yields the same tag string.
func Extract(filename string, catalog *Catalog) TagString {
	if catalog == nil {
		return TagString{}
	}
	stem, _ := textutil.SplitExtension(filename)

	winners := make(map[GroupKind]string, len(catalog.groups))
	if rest, seeded, ok := catalog.splitTagBlock(stem); ok {
		stem = rest
		for _, m := range seeded {
			if _, taken := winners[m.group]; !taken {
				winners[m.group] = m.label
			}
		}
	}

	input := strings.ReplaceAll(stem, "_", " ")
	for _, rule := range catalog.rules {
		if _, taken := winners[rule.Group]; taken {
			continue
		}
		if rule.Pattern.MatchString(input) {
			winners[rule.Group] = rule.Label
		}
	}
	return catalog.emit(winners)
}

func (c *Catalog) emit(winners map[GroupKind]string) TagString {
	if len(winners) == 0 {
		return TagString{format: c.format}
	}
	groups := make([]GroupKind, 0, len(winners))
	for group := range winners {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return c.rank[groups[i]] < c.rank[groups[j]]
	})

	labels := make([]string, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		label := winners[group]
		key := strings.ToLower(label)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, label)
	}
	return TagString{labels: labels, format: c.format}
}

// splitTagBlock looks for a trailing "<prefix><open>labels<close>" block made
// only of catalog labels. It returns the stem without the block and the
// labels found in it.
func (c *Catalog) splitTagBlock(stem string) (string, []match, bool) {
	open, closing := c.format.Open, c.format.Close
	if open == "" || closing == "" {
		return stem, nil, false
	}
	trimmed := strings.TrimRight(stem, " ")
	if !strings.HasSuffix(trimmed, closing) {
		return stem, nil, false
	}
	body := strings.TrimSuffix(trimmed, closing)
	start := strings.LastIndex(body, open)
	if start < 0 {
		return stem, nil, false
	}
	matches, ok := c.parseLabels(body[start+len(open):])
	if !ok || len(matches) == 0 {
		return stem, nil, false
	}
	rest := body[:start]
	if c.format.Prefix != "" {
		rest = strings.TrimSuffix(rest, c.format.Prefix)
	}
	return strings.TrimRight(rest, " "), matches, true
}

// parseLabels splits content into known labels. Labels may contain the
// delimiter themselves, so the longest known label at each position wins.
func (c *Catalog) parseLabels(content string) ([]match, bool) {
	content = strings.TrimSpace(content)
	delimiter := c.format.Delimiter
	var out []match
	for content != "" {
		best := ""
		for label := range c.labels {
			if len(label) <= len(best) || len(label) > len(content) {
				continue
			}
			head := strings.ToLower(content[:len(label)])
			if head != label {
				continue
			}
			tail := content[len(label):]
			if tail != "" && !strings.HasPrefix(tail, delimiter) {
				continue
			}
			best = label
		}
		if best == "" {
			return nil, false
		}
		group, _ := c.groupOf(best)
		out = append(out, match{group: group, label: c.canonicalLabel(best, group)})
		content = strings.TrimPrefix(content[len(best):], delimiter)
		content = strings.TrimLeft(content, " ")
	}
	return out, true
}

func (c *Catalog) canonicalLabel(key string, group GroupKind) string {
	for _, rule := range c.rules {
		if rule.Group == group && strings.ToLower(rule.Label) == key {
			return rule.Label
		}
	}
	return key
}
