package config

import "gopkg.in/yaml.v3"

// StringList handles YAML fields that can be a single string or a list of strings.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*s = []string{single}
		return nil
	}

	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	if list == nil {
		list = []string{}
	}
	*s = list
	return nil
}
