package types

import "strings"

// DefaultNamespace holds globally visible members and unqualified classes.
const DefaultNamespace = "__default__"

// ArraySuffix marks an array type name.
const ArraySuffix = "[]"

// VoidType is the return type of functions declared without one.
const VoidType = "Void"

// MemberKind distinguishes the three declaration grammars.
type MemberKind uint8

const (
	MemberFunction MemberKind = iota
	MemberConstructor
	MemberField
)

func (k MemberKind) String() string {
	switch k {
	case MemberFunction:
		return "function"
	case MemberConstructor:
		return "constructor"
	case MemberField:
		return "field"
	default:
		return "unknown"
	}
}

// Member is one function, constructor or field of a namespace or class.
// Key is the lookup name: "name()" for functions, "Class()" for
// constructors and the bare name for fields.
type Member struct {
	Key           string          `json:"key" yaml:"key" toml:"key"`
	Kind          MemberKind      `json:"kind" yaml:"kind" toml:"kind"`
	ReturnType    string          `json:"returnType" yaml:"returnType" toml:"returnType"`
	Documentation string          `json:"documentation,omitempty" yaml:"documentation,omitempty" toml:"documentation,omitempty"`
	Completion    *CompletionItem `json:"completion,omitempty" yaml:"completion,omitempty" toml:"completion,omitempty"`
	Signature     *Signature      `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`
}

// Signature is one overload of a callable member.
type Signature struct {
	Label         string   `json:"label" yaml:"label" toml:"label"`
	Documentation string   `json:"documentation,omitempty" yaml:"documentation,omitempty" toml:"documentation,omitempty"`
	Parameters    []string `json:"parameters" yaml:"parameters" toml:"parameters"`
}

// MemberTable is the shape shared by namespaces and classes.
type MemberTable struct {
	Members     map[string]*Member      `json:"members" yaml:"members" toml:"members"`
	Signatures  map[string][]*Signature `json:"signatures" yaml:"signatures" toml:"signatures"`
	Completions []CompletionItem        `json:"completions" yaml:"completions" toml:"completions"`
}

// NewMemberTable returns an empty table ready for inserts.
func NewMemberTable() *MemberTable {
	return &MemberTable{
		Members:    make(map[string]*Member),
		Signatures: make(map[string][]*Signature),
	}
}

// Add registers m. The last member with a given key wins; signatures
// accumulate as an overload set deduplicated by label.
func (t *MemberTable) Add(m *Member) {
	t.Members[m.Key] = m
	if m.Completion != nil {
		t.Completions = append(t.Completions, *m.Completion)
	}
	if m.Signature == nil {
		return
	}
	for _, existing := range t.Signatures[m.Key] {
		if existing.Label == m.Signature.Label {
			return
		}
	}
	t.Signatures[m.Key] = append(t.Signatures[m.Key], m.Signature)
}

// Lookup returns the member with the given key.
func (t *MemberTable) Lookup(key string) (*Member, bool) {
	if t == nil {
		return nil, false
	}
	m, ok := t.Members[key]
	return m, ok
}

// IsArrayType reports whether name carries the array suffix.
func IsArrayType(name string) bool {
	return strings.HasSuffix(name, ArraySuffix)
}

// ElementType strips one array suffix.
func ElementType(name string) string {
	return strings.TrimSuffix(name, ArraySuffix)
}

// QualifyClass returns the catalog key of class in namespace ns.
func QualifyClass(ns, class string) string {
	if ns == DefaultNamespace || ns == "" {
		return class
	}
	return ns + "::" + class
}
