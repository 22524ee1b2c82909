package theme

import (
	"slices"
	"strings"
)

// Variable is a CSS custom property.
type Variable struct {
	Name  string
	Value string
}

// Variables lists the custom properties for cfg's theme section in a stable
// order: colors, fonts, spacing (each sorted by key), then border radius and
// header gradient.
func Variables(cfg Config) []Variable {
	var vars []Variable
	add := func(prefix string, m map[string]string) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			vars = append(vars, Variable{Name: "--" + prefix + "-" + k, Value: m[k]})
		}
	}
	add("color", cfg.Theme.Colors)
	add("font", cfg.Theme.Fonts)
	add("spacing", cfg.Theme.Spacing)
	vars = append(vars,
		Variable{Name: "--border-radius", Value: cfg.Theme.BorderRadius},
		Variable{Name: "--header-gradient", Value: cfg.Theme.HeaderGradient},
	)
	return vars
}

// CSS renders Variables as a :root rule.
func CSS(cfg Config) string {
	var b strings.Builder
	b.WriteString(":root{")
	for _, v := range Variables(cfg) {
		b.WriteString(v.Name)
		b.WriteByte(':')
		b.WriteString(cssValue(v.Value))
		b.WriteByte(';')
	}
	b.WriteString("}")
	return b.String()
}

// cssValue keeps a configuration value from closing the rule or the
// surrounding <style> element.
func cssValue(v string) string {
	r := strings.NewReplacer(";", "", "{", "", "}", "", "<", "", ">", "")
	return strings.TrimSpace(r.Replace(v))
}
