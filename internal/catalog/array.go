package catalog

import "github.com/Lightwood13/msc/internal/types"

var numericTypes = map[string]bool{"Int": true, "Long": true, "Float": true, "Double": true}

// SynthesizeArrayType returns the declaration lines of the array type of
// element. The set is fixed: numeric elements add avg and sum, String adds
// concat and join.
func SynthesizeArrayType(element string) []string {
	decls := []string{
		"add(" + element + " value, Int index)",
		"append(" + element + " value)",
		"clear()",
		"Boolean contains(" + element + " value)",
		"Int find(" + element + " value)",
		"Int length()",
		element + " pop()",
		element + " remove(Int index)",
		"Void reverse()",
		"Void shuffle()",
		"String string()",
	}
	switch {
	case numericTypes[element]:
		decls = append(decls, "Double avg()", element+" sum()")
	case element == "String":
		decls = append(decls, "String concat()", "String join(String delimiter)")
	}
	return decls
}

// arrayTable builds the member table of element[].
func arrayTable(element string) *types.MemberTable {
	return parseMembers(SynthesizeArrayType(element), memberPrefix(element+types.ArraySuffix, false))
}
