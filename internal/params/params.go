// Package params binds cluster values into an ARM parameter document.
//
// The parameter document carries the placeholders _CLUSTER_NAME_,
// _CLUSTER_LOCATION_, _USER_, _PWD_ and _PORT<i>_. Binding builds a key/value
// map from the request, checks that the document uses exactly one port
// placeholder per supplied port and no unknown placeholder, and only then
// renders the document. Other underscore-delimited text such as the VM size
// Standard_D2_v2 is left alone; a JSON string that consists of a single
// placeholder-shaped token is treated as a misspelt placeholder.
package params

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Fixed placeholder keys.
const (
	KeyClusterName     = "_CLUSTER_NAME_"
	KeyClusterLocation = "_CLUSTER_LOCATION_"
	KeyUser            = "_USER_"
	KeyPassword        = "_PWD_"
)

var (
	placeholderRE = regexp.MustCompile(`_(?:CLUSTER_NAME|CLUSTER_LOCATION|USER|PWD|PORT[0-9]+)_`)
	// suspectRE matches JSON strings holding nothing but a placeholder-shaped token.
	suspectRE = regexp.MustCompile(`"(_[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)*_)"`)
	portKeyRE = regexp.MustCompile(`^_PORT([1-9][0-9]*)_$`)
)

// PortKey returns the placeholder for the i-th port, numbered from 1.
func PortKey(i int) string {
	return "_PORT" + strconv.Itoa(i) + "_"
}

// Values are the cluster specific inputs of a parameter document.
type Values struct {
	ClusterName string
	Location    string
	User        string
	Password    string
	Ports       []int
}

// Map returns the placeholder to replacement mapping for v.
func (v *Values) Map() map[string]string {
	m := map[string]string{
		KeyClusterName:     v.ClusterName,
		KeyClusterLocation: v.Location,
		KeyUser:            v.User,
		KeyPassword:        v.Password,
	}
	for i, p := range v.Ports {
		m[PortKey(i+1)] = strconv.Itoa(p)
	}
	return m
}

// Error describes every problem found while validating a parameter document.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid parameter document: " + strings.Join(e.Problems, "; ")
}

// Placeholders returns the distinct placeholders used in doc, sorted,
// including whole-string tokens that are not known placeholders.
func Placeholders(doc string) []string {
	seen := map[string]struct{}{}
	for _, m := range placeholderRE.FindAllString(doc, -1) {
		seen[m] = struct{}{}
	}
	for _, m := range suspectRE.FindAllStringSubmatch(doc, -1) {
		seen[m[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks doc against v without rendering it.
func Validate(doc string, v *Values) error {
	var problems []string
	for _, k := range []struct{ key, val string }{
		{KeyClusterName, v.ClusterName},
		{KeyClusterLocation, v.Location},
		{KeyUser, v.User},
		{KeyPassword, v.Password},
	} {
		if k.val == "" {
			problems = append(problems, fmt.Sprintf("empty value for %s", k.key))
		}
	}

	values := v.Map()
	declared := map[int]bool{}
	for _, ph := range Placeholders(doc) {
		if m := portKeyRE.FindStringSubmatch(ph); m != nil {
			n, _ := strconv.Atoi(m[1])
			declared[n] = true
			if n > len(v.Ports) {
				problems = append(problems, fmt.Sprintf("%s has no matching port (%d supplied)", ph, len(v.Ports)))
			}
			continue
		}
		if _, ok := values[ph]; !ok {
			problems = append(problems, fmt.Sprintf("unknown placeholder %s", ph))
		}
	}
	for i := range v.Ports {
		if !declared[i+1] {
			problems = append(problems, fmt.Sprintf("port %d supplied but %s not found", v.Ports[i], PortKey(i+1)))
		}
	}
	if len(problems) > 0 {
		return &Error{Problems: problems}
	}
	return nil
}

// Bind validates doc and replaces every placeholder with its value.
// String values are JSON-escaped since placeholders normally sit inside JSON strings.
func Bind(doc string, v *Values) (string, error) {
	if err := Validate(doc, v); err != nil {
		return "", err
	}
	values := v.Map()
	return placeholderRE.ReplaceAllStringFunc(doc, func(ph string) string {
		return jsonEscape(values[ph])
	}), nil
}

func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}

// DecodeParameters decodes a bound parameter document. An ARM parameter file
// ({"parameters": {...}}) yields its parameters object.
func DecodeParameters(doc string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	if p, ok := m["parameters"].(map[string]any); ok {
		return p, nil
	}
	return m, nil
}

// DecodeTemplate decodes an ARM template document.
func DecodeTemplate(doc string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decode template: not a JSON object")
	}
	return m, nil
}
