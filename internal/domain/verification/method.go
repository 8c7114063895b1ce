package verification

import (
	"fmt"
	"strings"
)

// Method is how a certificate can be verified.
type Method uint8

const (
	MethodNone Method = iota
	MethodProctored
	MethodBlockchain
	MethodRegistry
	MethodSimpleLink
)

// Methods lists every Method in rule priority order, MethodNone last.
func Methods() []Method {
	return []Method{MethodProctored, MethodBlockchain, MethodRegistry, MethodSimpleLink, MethodNone}
}

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodProctored:
		return "proctored"
	case MethodBlockchain:
		return "blockchain"
	case MethodRegistry:
		return "registry"
	case MethodSimpleLink:
		return "simple_link"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return MethodNone, fmt.Errorf("unknown verification method %q", s)
}

// MarshalText encodes the method by name.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a method name.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
