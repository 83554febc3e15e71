package anoncreds

import (
	"github.com/privacybydesign/anoncreds/internal/common"
)

// Schema is the ledger-registered list of attribute names of a type of claim.
type Schema struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attr_names"`
}

// Validate checks that the schema has at least one attribute and that its attribute names are
// nonempty and unique.
func (s *Schema) Validate() error {
	if len(s.AttrNames) == 0 {
		return common.Errorf(common.InvalidSchema, "schema %s has no attributes", s.Name)
	}
	seen := make(map[string]struct{}, len(s.AttrNames))
	for _, name := range s.AttrNames {
		if name == "" {
			return common.Errorf(common.InvalidSchema, "schema %s has an empty attribute name", s.Name)
		}
		if _, ok := seen[name]; ok {
			return common.Errorf(common.InvalidSchema, "schema %s has duplicate attribute %s", s.Name, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// AttributeIndex returns the position of the specified attribute in the schema, or -1.
func (s *Schema) AttributeIndex(name string) int {
	for i, n := range s.AttrNames {
		if n == name {
			return i
		}
	}
	return -1
}
