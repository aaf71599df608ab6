package bencode

import (
	"strconv"
	"strings"
)

// GetByPath walks dot-separated dict keys and list indexes, e.g.
// "info.files.0.length". It returns nil when any step is missing.
func GetByPath(v Value, path string) Value {
	if path == "" {
		return v
	}
	cur := v
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case *Dict:
			next, ok := node.Get(part)
			if !ok {
				return nil
			}
			cur = next
		case List:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			cur = node[idx]
		default:
			return nil
		}
	}
	return cur
}

func GetString(v Value, path string) (string, bool) {
	b, ok := GetByPath(v, path).(Bytes)
	if !ok {
		return "", false
	}
	return string(b), true
}

func GetInt(v Value, path string) (int64, bool) {
	i, ok := GetByPath(v, path).(Int)
	if !ok {
		return 0, false
	}
	return int64(i), true
}

func GetList(v Value, path string) (List, bool) {
	l, ok := GetByPath(v, path).(List)
	return l, ok
}

func GetDict(v Value, path string) (*Dict, bool) {
	d, ok := GetByPath(v, path).(*Dict)
	return d, ok
}

func CheckPath(v Value, path string) bool {
	return GetByPath(v, path) != nil
}
