package curriculum

import (
	"fmt"
	"os"
	"sort"

	"github.com/p-n-ai/pai-lingo/internal/jsondoc"
)

// FlattenKeys returns the dotted path of every object member in n, sorted.
func FlattenKeys(n *jsondoc.Node) []string {
	var keys []string
	var walk func(prefix string, node *jsondoc.Node)
	walk = func(prefix string, node *jsondoc.Node) {
		for _, m := range node.Members {
			key := m.Key
			if prefix != "" {
				key = prefix + "." + m.Key
			}
			keys = append(keys, key)
			if m.Value.IsObject() {
				walk(key, m.Value)
			}
		}
	}
	if n.IsObject() {
		walk("", n)
	}
	sort.Strings(keys)
	return keys
}

// MissingKeys returns the flattened keys of ref that target lacks, sorted.
func MissingKeys(ref, target *jsondoc.Node) []string {
	have := make(map[string]struct{})
	for _, k := range FlattenKeys(target) {
		have[k] = struct{}{}
	}

	var missing []string
	for _, k := range FlattenKeys(ref) {
		if _, ok := have[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// CompareLocaleFiles loads two app locale files and returns the keys present
// in refPath but absent from targetPath.
func CompareLocaleFiles(refPath, targetPath string) ([]string, error) {
	ref, err := loadLocaleFile(refPath)
	if err != nil {
		return nil, err
	}
	target, err := loadLocaleFile(targetPath)
	if err != nil {
		return nil, err
	}
	return MissingKeys(ref, target), nil
}

func loadLocaleFile(path string) (*jsondoc.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale file: %w", err)
	}
	n, _, _, err := jsondoc.ParseRepaired(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return n, nil
}
