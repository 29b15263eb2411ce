// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"errors"
	"sort"

	"github.com/luxfi/drp/drp"
	"github.com/luxfi/drp/hashgraph"
)

// testSetDRP is a minimal add/delete string set used to exercise the
// pipeline without pulling in a full application DRP.
type testSetDRP struct {
	items map[string]struct{}
}

func newTestSetDRP() *testSetDRP { return &testSetDRP{items: make(map[string]struct{})} }

var _ drp.DRP = (*testSetDRP)(nil)

func (d *testSetDRP) SemanticsType() hashgraph.SemanticsType { return hashgraph.SemanticsPair }

func (d *testSetDRP) Clone() drp.DRP {
	items := make(map[string]struct{}, len(d.items))
	for k := range d.items {
		items[k] = struct{}{}
	}
	return &testSetDRP{items: items}
}

func (d *testSetDRP) Apply(_ drp.OpContext, opType string, value []any) (any, error) {
	if len(value) != 1 {
		return nil, errors.New("testSetDRP: expected one argument")
	}
	item, ok := value[0].(string)
	if !ok {
		return nil, errors.New("testSetDRP: expected a string argument")
	}
	switch opType {
	case "add":
		d.items[item] = struct{}{}
		return nil, nil
	case "delete":
		delete(d.items, item)
		return nil, nil
	default:
		return nil, errors.New("testSetDRP: unknown operation " + opType)
	}
}

func (d *testSetDRP) Query(opType string, value []any) (any, error) {
	switch opType {
	case "query_has":
		item, _ := value[0].(string)
		_, ok := d.items[item]
		return ok, nil
	case "query_size":
		return len(d.items), nil
	default:
		return nil, errors.New("testSetDRP: unknown query " + opType)
	}
}

func (d *testSetDRP) ExportState() []drp.StateEntry {
	items := make([]string, 0, len(d.items))
	for k := range d.items {
		items = append(items, k)
	}
	sort.Strings(items)
	return []drp.StateEntry{{Key: "items", Value: items}}
}

func (d *testSetDRP) ImportState(entries []drp.StateEntry) error {
	for _, e := range entries {
		if e.Key != "items" {
			continue
		}
		items, ok := e.Value.([]string)
		if !ok {
			return errors.New("testSetDRP: bad state entry")
		}
		d.items = make(map[string]struct{}, len(items))
		for _, it := range items {
			d.items[it] = struct{}{}
		}
	}
	return nil
}
