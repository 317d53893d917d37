// Package codegen emits Go source that embeds a serialized automaton and
// exposes typed helpers around it.
package codegen

import "github.com/pkg/errors"

// Names used in generated code
const (
	InputName       = "input"
	ReplacementName = "replacement"
	MatchName       = "m"
	PatternSuffix   = "Pattern"
	AutomatonSuffix = "Automaton"
	ResultSuffix    = "Result"

	// MatchField holds the whole match in a generated result struct.
	MatchField = "Match"
	StartField = "Start"
	EndField   = "End"

	moarPath = "github.com/s4ke/moar/pkg/moar"
)

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" || !isASCIILetter(s[0]) {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" || !isASCIILetter(s[0]) {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}

// FieldName returns the result struct field for a variable. Names that
// start with a digit get a V prefix.
func FieldName(variable string) string {
	if variable != "" && '0' <= variable[0] && variable[0] <= '9' {
		return "V" + variable
	}
	return UpperFirst(variable)
}

// fieldNames maps each variable to its field and rejects collisions with
// each other or with the fixed fields.
func fieldNames(vars []string) ([]string, error) {
	taken := map[string]string{
		MatchField: "",
		StartField: "",
		EndField:   "",
	}
	fields := make([]string, len(vars))
	for i, v := range vars {
		f := FieldName(v)
		if other, ok := taken[f]; ok {
			if other == "" {
				return nil, errors.Errorf("variable %q collides with the %s field", v, f)
			}
			return nil, errors.Errorf("variables %q and %q both map to field %s", other, v, f)
		}
		taken[f] = v
		fields[i] = f
	}
	return fields, nil
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
