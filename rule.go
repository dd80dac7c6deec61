package dragparser

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Action is the operation a transformation rule applies to the nodes
// its selector matched.
type Action string

// Supported rule actions.
const (
	// ActionRemove deletes the matched node and its subtree.
	ActionRemove Action = "remove"

	// ActionRename changes the matched node's tag to Rule.To.
	ActionRename Action = "rename"

	// ActionUnwrap replaces the matched node with its children.
	ActionUnwrap Action = "unwrap"

	// ActionStripAttrs removes all attributes from the matched node.
	ActionStripAttrs Action = "strip-attrs"
)

// Rule pairs a CSS selector with an action. Selectors are matched by
// tag/class/id/attribute predicates; selector syntax is validated when
// the rule set is compiled by the transformation pipeline.
type Rule struct {
	Selector string `yaml:"selector"`
	Action   Action `yaml:"action"`

	// To is the target tag for ActionRename; ignored otherwise.
	To string `yaml:"to,omitempty"`
}

// RuleSet is an ordered sequence of rules applied post-normalization.
// Declaration order is significant: when several rules match the same
// node, the last matching rule wins. A RuleSet is immutable after load
// and safe to share across concurrent extractions.
type RuleSet struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// ParseRuleSet decodes a YAML rule set document.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, Errorf(EINVALIDRULE, "invalid rule set: %v", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks structural rule errors. Selector syntax is checked
// separately at compile time by the transformation pipeline.
func (rs *RuleSet) Validate() error {
	for i, r := range rs.Rules {
		if r.Selector == "" {
			return Errorf(EINVALIDRULE, "rule %d: selector required", i)
		}
		switch r.Action {
		case ActionRemove, ActionUnwrap, ActionStripAttrs:
		case ActionRename:
			if r.To == "" {
				return Errorf(EINVALIDRULE, "rule %d: rename requires a target tag", i)
			}
		default:
			return Errorf(EINVALIDRULE, "rule %d: unknown action %q", i, r.Action)
		}
	}
	return nil
}

// RuleSetRegistry maps profile names to rule sets so callers can
// select output shaping by name. Populate it at startup; it is
// read-only afterwards and safe for concurrent use.
type RuleSetRegistry struct {
	sets map[string]*RuleSet
}

// NewRuleSetRegistry creates an empty registry.
func NewRuleSetRegistry() *RuleSetRegistry {
	return &RuleSetRegistry{sets: make(map[string]*RuleSet)}
}

// Register adds a rule set under its name. An existing rule set with
// the same name is replaced.
func (r *RuleSetRegistry) Register(rs *RuleSet) {
	r.sets[rs.Name] = rs
}

// Get returns the rule set for a profile name.
// Returns nil if no rule set is registered under the name.
func (r *RuleSetRegistry) Get(name string) *RuleSet {
	return r.sets[name]
}

// List returns all registered profile names in sorted order.
func (r *RuleSetRegistry) List() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
