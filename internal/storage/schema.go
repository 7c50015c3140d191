/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"skinforge/internal/skin"
)

//go:embed schema/layout.schema.json
var layoutSchemaJSON []byte

var (
	layoutSchemaOnce sync.Once
	layoutSchema     *gojsonschema.Schema
	layoutSchemaErr  error
)

// LayoutSchema returns the raw JSON schema layout documents must satisfy.
func LayoutSchema() []byte { return append([]byte(nil), layoutSchemaJSON...) }

func compiledLayoutSchema() (*gojsonschema.Schema, error) {
	layoutSchemaOnce.Do(func() {
		layoutSchema, layoutSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(layoutSchemaJSON))
	})
	return layoutSchema, layoutSchemaErr
}

// ValidateLayout checks a serialized layout against the embedded schema.
// Violations are reported as ErrInvalidDocument.
func ValidateLayout(doc []byte) error {
	schema, err := compiledLayoutSchema()
	if err != nil {
		return fmt.Errorf("compile layout schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// EncodeLayout serializes and validates a geometry set.
func EncodeLayout(g skin.GeometrySet) ([]byte, error) {
	if g.Controls == nil {
		g.Controls = []skin.Control{}
	}
	if g.Screens == nil {
		g.Screens = []skin.Screen{}
	}
	doc, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	if err := ValidateLayout(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeLayout validates and parses a layout document.
func DecodeLayout(doc []byte) (skin.GeometrySet, error) {
	if err := ValidateLayout(doc); err != nil {
		return skin.GeometrySet{}, err
	}
	var g skin.GeometrySet
	if err := json.Unmarshal(doc, &g); err != nil {
		return skin.GeometrySet{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return g, nil
}
