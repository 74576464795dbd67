package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Param maps one constructor parameter to the CSV column that supplies it.
type Param struct {
	Name   string
	Column string
}

// ParseParamMap decodes a JSON object {"param": "Column", ...} keeping the key order,
// which is the order of the constructor arguments.
func ParseParamMap(data string) ([]Param, error) {
	dec := json.NewDecoder(strings.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse parameter map: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("parse parameter map: expected a JSON object")
	}

	var params []Param
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse parameter map: %w", err)
		}
		var column string
		if err := dec.Decode(&column); err != nil {
			return nil, fmt.Errorf("parse parameter map: value of %q: %w", keyTok, err)
		}
		params = append(params, Param{Name: keyTok.(string), Column: column})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse parameter map: %w", err)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("parse parameter map: no parameters")
	}

	return params, nil
}

// GenerateConstructors reads a CSV table with a header row and returns one
// constructor call per data row, e.g. GradientTheme("Dark", 0xFF111111, true).
func GenerateConstructors(r io.Reader, constructor string, params []Param) ([]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header row")
	}

	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[col] = i
	}
	for _, p := range params {
		if _, ok := header[p.Column]; !ok {
			return nil, fmt.Errorf("column %q not found in the CSV", p.Column)
		}
	}

	calls := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		args := make([]string, len(params))
		for i, p := range params {
			args[i] = formatArgument(p.Name, row[header[p.Column]])
		}
		calls = append(calls, fmt.Sprintf("%s(%s)", constructor, strings.Join(args, ", ")))
	}

	return calls, nil
}

// FormatConstructors joins calls as the body of an array literal, one per line,
// each followed by a comma.
func FormatConstructors(calls []string) string {
	var buf bytes.Buffer
	for _, c := range calls {
		buf.WriteString(c)
		buf.WriteString(",\n")
	}
	return buf.String()
}

var colorLiteralRe = regexp.MustCompile(`^(?:0x([0-9A-Fa-f]{8})|#([0-9A-Fa-f]{6})|#([0-9A-Fa-f]{8}))$`)

// formatArgument renders a CSV cell as a source literal. Colors in color parameters
// become 0xAARRGGBB, booleans and numbers are emitted bare, empty cells are null
// and everything else is a quoted string.
func formatArgument(param, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "null"
	}

	if strings.Contains(param, "Color") {
		if m := colorLiteralRe.FindStringSubmatch(v); m != nil {
			switch {
			case m[1] != "":
				return "0x" + strings.ToUpper(m[1])
			case m[2] != "":
				return "0xFF" + strings.ToUpper(m[2])
			default:
				rgba := strings.ToUpper(m[3])
				return "0x" + rgba[6:] + rgba[:6]
			}
		}
	}

	switch strings.ToLower(v) {
	case "true", "false":
		return strings.ToLower(v)
	}

	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}

	return strconv.Quote(v)
}
