package lifecycle

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
)

// yamlPatch sets the scalar at Path, creating intermediate mappings.
type yamlPatch struct {
	Path  []string
	Value string
}

// patchYAML applies patches to the YAML document at path. A missing file is
// skipped and reported as unchanged.
func patchYAML(path string, patches ...yamlPatch) (bool, error) {
	content, found, err := fsutil.ReadText(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if !found {
		return false, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return false, fmt.Errorf("patch %s: top level is not a mapping", path)
	}

	changed := false
	for _, p := range patches {
		c, err := setYAMLValue(root, p.Path, p.Value)
		if err != nil {
			return false, fmt.Errorf("patch %s: %w", path, err)
		}
		changed = changed || c
	}
	if !changed {
		return false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return false, err
	}
	return true, fsutil.WriteText(path, buf.String())
}

func setYAMLValue(node *yaml.Node, path []string, value string) (bool, error) {
	for i, key := range path {
		if node.Kind == yaml.SequenceNode && i == len(path)-1 {
			return setListEntry(node, key, value), nil
		}
		if node.Kind != yaml.MappingNode {
			return false, fmt.Errorf("%v: parent is not a mapping", path[:i])
		}
		child := mappingValue(node, key)
		last := i == len(path)-1
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if last {
				child = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str"}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		if last {
			if child.Kind != yaml.ScalarNode {
				return false, fmt.Errorf("%v: not a scalar", path)
			}
			if child.Value == value && child.Tag == "!!str" {
				return false, nil
			}
			child.Value = value
			child.Tag = "!!str"
			child.Style = 0
			return true, nil
		}
		node = child
	}
	return false, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// setListEntry handles the KEY=value list form of compose environments.
func setListEntry(node *yaml.Node, key, value string) bool {
	entry := key + "=" + value
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode && (item.Value == key || strings.HasPrefix(item.Value, key+"=")) {
			if item.Value == entry {
				return false
			}
			item.Value = entry
			return true
		}
	}
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry})
	return true
}
