package filter

// NodeKind distinguishes how a filter node is rendered and selected.
type NodeKind string

// Node kinds.
const (
	KindSingle NodeKind = "select"      // one value at a time
	KindMulti  NodeKind = "multiselect" // any number of values, OR semantics
	KindGroup  NodeKind = "group"       // container for nested filters
)

// FilterNode is one node of the dependent filter-option hierarchy. The tree
// shape is fixed at construction; only the option sets change afterwards
// (recomputed in place on every Refine, never replaced wholesale).
type FilterNode struct {
	Key      Key           `json:"key,omitempty"` // empty for groups
	Label    string        `json:"label"`
	Kind     NodeKind      `json:"kind"`
	Options  []string      `json:"options,omitempty"`
	Children []*FilterNode `json:"children,omitempty"`

	// AgeOptions is the numeric slider scale, present only on the
	// character age node.
	AgeOptions []int `json:"age_options,omitempty"`

	// dependent nodes get their options recomputed on Refine; the root
	// genre node keeps its full option set for the catalog's lifetime.
	dependent bool
}

// pacingDefaults is the initial option ladder for the pacing filter, shown
// before the first refinement narrows it to values present in the catalog.
var pacingDefaults = []string{"медленный", "средний", "быстрый"}

// newHierarchy builds the fixed filter tree. Dependent nodes start with
// empty option sets; the engine populates them via Refine.
func newHierarchy() []*FilterNode {
	return []*FilterNode{
		{
			Key:   KeyMainGenre,
			Label: "Основной жанр",
			Kind:  KindSingle,
		},
		{
			Key:       KeySubGenre,
			Label:     "Поджанр",
			Kind:      KindSingle,
			dependent: true,
		},
		{
			Label: "Характеристики героя",
			Kind:  KindGroup,
			Children: []*FilterNode{
				{Key: KeyCharacterAge, Label: "Возраст героя", Kind: KindSingle, dependent: true},
				{Key: KeyCharacterGender, Label: "Пол героя", Kind: KindSingle, dependent: true},
				{Key: KeyCharacterProfession, Label: "Профессия героя", Kind: KindSingle, dependent: true},
			},
		},
		{
			Label: "Сеттинг",
			Kind:  KindGroup,
			Children: []*FilterNode{
				{Key: KeySettingLocation, Label: "Место действия", Kind: KindSingle, dependent: true},
				{Key: KeySettingTimePeriod, Label: "Временной период", Kind: KindSingle, dependent: true},
			},
		},
		{
			Label: "Сюжет и атмосфера",
			Kind:  KindGroup,
			Children: []*FilterNode{
				{Key: KeyPlotTropes, Label: "Литературные тропы", Kind: KindMulti, dependent: true},
				{Key: KeyMood, Label: "Настроение", Kind: KindMulti, dependent: true},
				{Key: KeyPacing, Label: "Темп повествования", Kind: KindSingle, Options: pacingDefaults, dependent: true},
			},
		},
	}
}

// walk visits every node in the tree depth-first.
func walk(nodes []*FilterNode, visit func(*FilterNode)) {
	for _, node := range nodes {
		visit(node)
		walk(node.Children, visit)
	}
}

// findNode returns the node for a key, or nil.
func findNode(nodes []*FilterNode, key Key) *FilterNode {
	var found *FilterNode
	walk(nodes, func(n *FilterNode) {
		if n.Key == key {
			found = n
		}
	})
	return found
}
