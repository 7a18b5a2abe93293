package manifest

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
)

// WrtField is an explicit wrt clause. It accepts a single item or a list:
//
//	wrt: x
//	wrt: [self, 0, y]
//
// Integers are parameter indices, "self" is the implicit self parameter and
// any other string is a parameter name.
type WrtField struct {
	Items []derivative.WrtItem
	Set   bool
}

func (w *WrtField) UnmarshalYAML(node *yaml.Node) error {
	w.Set = true
	w.Items = []derivative.WrtItem{}
	switch node.Kind {
	case yaml.ScalarNode:
		item, err := wrtItem(node)
		if err != nil {
			return err
		}
		w.Items = append(w.Items, item)
	case yaml.SequenceNode:
		for _, child := range node.Content {
			if child.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: wrt items must be names, indices or self", child.Line)
			}
			item, err := wrtItem(child)
			if err != nil {
				return err
			}
			w.Items = append(w.Items, item)
		}
	default:
		return fmt.Errorf("line %d: wrt must be an item or a list of items", node.Line)
	}
	return nil
}

func wrtItem(node *yaml.Node) (derivative.WrtItem, error) {
	if node.Tag == "!!int" {
		i, err := strconv.Atoi(node.Value)
		if err != nil {
			return derivative.WrtItem{}, fmt.Errorf("line %d: invalid wrt index %q", node.Line, node.Value)
		}
		return derivative.Indexed(i), nil
	}
	if node.Value == "" {
		return derivative.WrtItem{}, fmt.Errorf("line %d: empty wrt item", node.Line)
	}
	if node.Value == config.SelfParamName {
		return derivative.Self(), nil
	}
	return derivative.Named(node.Value), nil
}

// Clause returns the items, or nil when no wrt clause was written.
func (w WrtField) Clause() []derivative.WrtItem {
	if !w.Set {
		return nil
	}
	return w.Items
}
