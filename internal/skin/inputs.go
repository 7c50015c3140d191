/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package skin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// InputKind distinguishes the shapes a control's inputs can take.
type InputKind int

const (
	InputKey         InputKind = iota // a single key name
	InputCombo                        // ordered list of keys pressed together
	InputDirectional                  // d-pad style: up/down/left/right
	InputTouch                        // touch pointer: x/y axes
)

func (k InputKind) String() string {
	switch k {
	case InputKey:
		return "key"
	case InputCombo:
		return "combo"
	case InputDirectional:
		return "directional"
	case InputTouch:
		return "touch"
	default:
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
}

// DirectionalInputs names the key bound to each direction.
type DirectionalInputs struct {
	Up    string `json:"up"`
	Down  string `json:"down"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// TouchInputs names the two axes reported by a touch pointer region.
type TouchInputs struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Inputs is the tagged union of control bindings. On the wire it is a string,
// an array of strings or an object, depending on Kind.
type Inputs struct {
	Kind        InputKind
	Keys        []string
	Directional *DirectionalInputs
	Touch       *TouchInputs
}

func Key(name string) Inputs { return Inputs{Kind: InputKey, Keys: []string{name}} }
func Combo(names ...string) Inputs { return Inputs{Kind: InputCombo, Keys: append([]string(nil), names...)} }
func Touch(x, y string) Inputs { return Inputs{Kind: InputTouch, Touch: &TouchInputs{X: x, Y: y}} }
func Directional(up, down, left, right string) Inputs {
	return Inputs{Kind: InputDirectional, Directional: &DirectionalInputs{Up: up, Down: down, Left: left, Right: right}}
}

// Clone returns a deep copy of in.
func (in Inputs) Clone() Inputs {
	out := Inputs{Kind: in.Kind}
	if in.Keys != nil {
		out.Keys = append([]string(nil), in.Keys...)
	}
	if in.Directional != nil {
		d := *in.Directional
		out.Directional = &d
	}
	if in.Touch != nil {
		t := *in.Touch
		out.Touch = &t
	}
	return out
}

func (in Inputs) MarshalJSON() ([]byte, error) {
	switch in.Kind {
	case InputKey:
		if len(in.Keys) == 0 {
			return json.Marshal("")
		}
		return json.Marshal(in.Keys[0])
	case InputCombo:
		keys := in.Keys
		if keys == nil {
			keys = []string{}
		}
		return json.Marshal(keys)
	case InputDirectional:
		if in.Directional == nil {
			return nil, errors.New("directional inputs without directions")
		}
		return json.Marshal(in.Directional)
	case InputTouch:
		if in.Touch == nil {
			return nil, errors.New("touch inputs without axes")
		}
		return json.Marshal(in.Touch)
	default:
		return nil, fmt.Errorf("unknown input kind %d", in.Kind)
	}
}

func (in *Inputs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*in = Inputs{Kind: InputCombo}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*in = Key(s)
		return nil
	case '[':
		var keys []string
		if err := json.Unmarshal(data, &keys); err != nil {
			return fmt.Errorf("combo inputs: %w", err)
		}
		*in = Combo(keys...)
		return nil
	case '{':
		var raw map[string]string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("structured inputs: %w", err)
		}
		if _, ok := raw["x"]; ok {
			*in = Touch(raw["x"], raw["y"])
			return nil
		}
		if _, ok := raw["up"]; ok {
			*in = Directional(raw["up"], raw["down"], raw["left"], raw["right"])
			return nil
		}
		return errors.New("structured inputs need either up/down/left/right or x/y")
	default:
		return fmt.Errorf("unsupported inputs value %q", string(data))
	}
}
