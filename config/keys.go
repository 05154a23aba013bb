package config

import (
	"reflect"
	"strings"
)

// keyPatterns lists the dotted mapstructure keys of t. Map keys become "*".
func keyPatterns(t reflect.Type, prefix string) []string {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	join := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	switch t.Kind() {
	case reflect.Struct:
		var out []string
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			tag, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
			if tag == "-" {
				continue
			}
			if strings.Contains(opts, "squash") {
				out = append(out, keyPatterns(f.Type, prefix)...)
				continue
			}
			if tag == "" {
				tag = strings.ToLower(f.Name)
			}
			out = append(out, keyPatterns(f.Type, join(tag))...)
		}
		return out
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return []string{prefix}
		}
		return keyPatterns(t.Elem(), join("*"))
	default:
		if prefix == "" {
			return nil
		}
		return []string{prefix}
	}
}

func matchesAny(patterns []string, key string) bool {
	for _, p := range patterns {
		if matchPattern(p, key) {
			return true
		}
	}
	return false
}

// matchPattern compares dotted keys segment by segment; "*" matches one segment.
func matchPattern(pattern, key string) bool {
	ps := strings.Split(pattern, ".")
	ks := strings.Split(key, ".")
	if len(ps) != len(ks) {
		return false
	}
	for i := range ps {
		if ps[i] != "*" && ps[i] != ks[i] {
			return false
		}
	}
	return true
}
