/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"skinforge/internal/geom"
	"skinforge/internal/interaction"
	"skinforge/internal/skin"
)

// Parse reads a script. Every problem found is returned with its position;
// the Script is only usable when no errors come back.
//
// Layout:
//
//	orientation: portrait          # optional
//	grid: {snap: true, size: 10}   # optional
//	steps:
//	  - add-control: {id: a, inputs: a, frame: [20, 600, 60, 60]}
//	  - drag: {control: a, by: [10, 0]}
//	  - resize: {screen: Top Screen, handle: se, by: [40, 40]}
//	  - undo
//
// Items are addressed by id (controls and screens), by label (screens) or
// by index when the value is an integer.
func Parse(input []byte) (Script, []Error) {
	var s Script
	var root yaml.Node
	if err := yaml.Unmarshal(input, &root); err != nil {
		return s, []Error{{Message: err.Error()}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return s, []Error{{Message: "empty script"}}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return s, []Error{nodeErr(doc, "script must be a mapping with a steps list")}
	}

	var errs []Error
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "orientation":
			o, err := parseOrientation(val)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			s.Orientation = o
		case "grid":
			g, err := parseGrid(val)
			if err != nil {
				errs = append(errs, *err)
				continue
			}
			s.Grid = &g
		case "steps":
			if val.Kind != yaml.SequenceNode {
				errs = append(errs, nodeErr(val, "steps must be a list"))
				continue
			}
			for _, item := range val.Content {
				st, err := parseStep(item)
				if err != nil {
					errs = append(errs, *err)
					continue
				}
				s.Steps = append(s.Steps, st)
			}
		default:
			errs = append(errs, nodeErr(key, fmt.Sprintf("unknown key %q", key.Value)))
		}
	}
	return s, errs
}

func nodeErr(n *yaml.Node, msg string) Error {
	return Error{Line: n.Line, Column: n.Column, Message: msg}
}

// stepArgs is the union of every step's arguments.
type stepArgs struct {
	Control yaml.Node `yaml:"control"`
	Screen  yaml.Node `yaml:"screen"`
	Handle  string    `yaml:"handle"`
	By      []float64 `yaml:"by"`
	Cancel  bool      `yaml:"cancel"`
	Shift   bool      `yaml:"shift"`

	ID       string     `yaml:"id"`
	Label    string     `yaml:"label"`
	Inputs   yaml.Node  `yaml:"inputs"`
	Frame    []float64  `yaml:"frame"`
	Input    []float64  `yaml:"input"`
	Extended skin.Edges `yaml:"extended"`
	Locked   bool       `yaml:"locked"`
	Mirror   bool       `yaml:"mirror"`
	Aspect   *bool      `yaml:"aspect"`

	Snap *bool `yaml:"snap"`
	Size int   `yaml:"size"`

	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

func parseStep(n *yaml.Node) (Step, *Error) {
	var (
		op  string
		val *yaml.Node
	)
	switch n.Kind {
	case yaml.ScalarNode:
		op = n.Value
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			e := nodeErr(n, "a step is a single command name or a one-key mapping")
			return Step{}, &e
		}
		op, val = n.Content[0].Value, n.Content[1]
	default:
		e := nodeErr(n, "a step is a single command name or a one-key mapping")
		return Step{}, &e
	}
	st := Step{Op: Op(strings.ToLower(strings.TrimSpace(op))), Line: n.Line}
	if !knownOps[st.Op] {
		e := nodeErr(n, fmt.Sprintf("unknown command %q", op))
		return st, &e
	}

	if st.Op == OpOrientation {
		if val == nil {
			e := nodeErr(n, "orientation needs portrait or landscape")
			return st, &e
		}
		o, err := parseOrientation(val)
		if err != nil {
			return st, err
		}
		st.Orientation = o
		return st, nil
	}
	if st.Op == OpGrid {
		if val == nil {
			e := nodeErr(n, "grid needs snap and/or size")
			return st, &e
		}
		g, err := parseGrid(val)
		if err != nil {
			return st, err
		}
		st.Grid = g
		return st, nil
	}

	var a stepArgs
	if val != nil && !(val.Kind == yaml.ScalarNode && val.Value == "") {
		if val.Kind != yaml.MappingNode {
			e := nodeErr(val, fmt.Sprintf("%s takes a mapping of arguments", st.Op))
			return st, &e
		}
		if err := val.Decode(&a); err != nil {
			e := nodeErr(val, err.Error())
			return st, &e
		}
	}
	fail := func(msg string) (Step, *Error) {
		e := nodeErr(n, fmt.Sprintf("%s: %s", st.Op, msg))
		return st, &e
	}

	ref, err := parseRef(&a)
	if err != nil {
		return st, err
	}
	st.Target = ref
	st.Cancel = a.Cancel
	st.Shift = a.Shift
	if a.By != nil {
		if len(a.By) != 2 {
			return fail("by needs [dx, dy]")
		}
		st.By = geom.Point{X: a.By[0], Y: a.By[1]}
	}

	switch st.Op {
	case OpDrag, OpResize:
		if st.Target == nil {
			return fail("needs a control or screen")
		}
		if a.By == nil {
			return fail("needs by: [dx, dy]")
		}
		if st.Op == OpResize {
			h, herr := interaction.ParseHandle(a.Handle)
			if herr != nil || h == interaction.HandleNone {
				return fail(fmt.Sprintf("unknown handle %q", a.Handle))
			}
			st.Handle = h
		}
	case OpNudge:
		if a.By == nil {
			return fail("needs by: [dx, dy]")
		}
	case OpSelect, OpLock, OpUnlock:
		if st.Target == nil {
			return fail("needs a control or screen")
		}
	case OpAddControl:
		if a.Inputs.Kind == 0 {
			return fail("needs inputs")
		}
		in, ierr := decodeInputs(&a.Inputs)
		if ierr != nil {
			return st, ierr
		}
		f, ok := frameOf(a.Frame)
		if !ok {
			return fail("frame needs [x, y, width, height]")
		}
		st.Control = &skin.Control{
			ID:                 a.ID,
			Inputs:             in,
			Frame:              f,
			ExtendedEdges:      a.Extended,
			Label:              a.Label,
			Locked:             a.Locked,
			MirrorBottomScreen: a.Mirror,
		}
	case OpAddScreen:
		f, ok := frameOf(a.Frame)
		if !ok {
			return fail("frame needs [x, y, width, height]")
		}
		sc := &skin.Screen{ID: a.ID, Label: a.Label, OutputFrame: f, Locked: a.Locked, MaintainAspectRatio: true}
		if a.Aspect != nil {
			sc.MaintainAspectRatio = *a.Aspect
		}
		if a.Input != nil {
			in, ok := frameOf(a.Input)
			if !ok {
				return fail("input needs [x, y, width, height]")
			}
			sc.InputFrame = &in
		}
		st.Screen = sc
	case OpInsets:
		st.Insets = skin.Edges{Top: a.Top, Bottom: a.Bottom, Left: a.Left, Right: a.Right}
	}
	return st, nil
}

func parseRef(a *stepArgs) (*Ref, *Error) {
	var node *yaml.Node
	r := Ref{Index: -1}
	switch {
	case a.Control.Kind != 0 && a.Screen.Kind != 0:
		e := nodeErr(&a.Screen, "name either a control or a screen")
		return nil, &e
	case a.Control.Kind != 0:
		node, r.Type = &a.Control, interaction.ItemControl
	case a.Screen.Kind != 0:
		node, r.Type = &a.Screen, interaction.ItemScreen
	default:
		return nil, nil
	}
	if node.Kind != yaml.ScalarNode || strings.TrimSpace(node.Value) == "" {
		e := nodeErr(node, "item reference must be an id, a label or an index")
		return nil, &e
	}
	if node.Tag == "!!int" {
		i, err := strconv.Atoi(node.Value)
		if err != nil || i < 0 {
			e := nodeErr(node, fmt.Sprintf("bad index %q", node.Value))
			return nil, &e
		}
		r.Index = i
		return &r, nil
	}
	r.Name = node.Value
	return &r, nil
}

// decodeInputs accepts the same shapes as layout documents.
func decodeInputs(n *yaml.Node) (skin.Inputs, *Error) {
	var v any
	if err := n.Decode(&v); err != nil {
		e := nodeErr(n, err.Error())
		return skin.Inputs{}, &e
	}
	raw, err := json.Marshal(v)
	if err != nil {
		e := nodeErr(n, err.Error())
		return skin.Inputs{}, &e
	}
	var in skin.Inputs
	if err := json.Unmarshal(raw, &in); err != nil {
		e := nodeErr(n, "inputs: "+err.Error())
		return skin.Inputs{}, &e
	}
	return in, nil
}

func frameOf(v []float64) (geom.Frame, bool) {
	if len(v) != 4 {
		return geom.Frame{}, false
	}
	return geom.F(v[0], v[1], v[2], v[3]), true
}

func parseOrientation(n *yaml.Node) (skin.Orientation, *Error) {
	o := skin.Orientation(strings.ToLower(strings.TrimSpace(n.Value)))
	if n.Kind != yaml.ScalarNode || !o.Valid() {
		e := nodeErr(n, fmt.Sprintf("orientation must be portrait or landscape, got %q", n.Value))
		return "", &e
	}
	return o, nil
}

func parseGrid(n *yaml.Node) (geom.Grid, *Error) {
	var g struct {
		Snap *bool `yaml:"snap"`
		Size int   `yaml:"size"`
	}
	if n.Kind != yaml.MappingNode {
		e := nodeErr(n, "grid needs snap and/or size")
		return geom.Grid{}, &e
	}
	if err := n.Decode(&g); err != nil {
		e := nodeErr(n, err.Error())
		return geom.Grid{}, &e
	}
	if g.Size < 0 {
		e := nodeErr(n, "grid size must be positive")
		return geom.Grid{}, &e
	}
	out := geom.Grid{Enabled: true, Size: g.Size}
	if g.Snap != nil {
		out.Enabled = *g.Snap
	}
	return out, nil
}
