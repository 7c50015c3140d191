/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"reflect"
	"testing"
)

func TestGuidesEdges(t *testing.T) {
	got := Guides(F(10, 100, 20, 20), []Frame{F(10, 0, 40, 40)}, 0)
	want := []Guide{{Vertical: true, Pos: 10, From: 0, To: 120}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("left edges: got %+v", got)
	}

	// abutting on x, flush tops on y
	got = Guides(F(50, 0, 20, 20), []Frame{F(10, 0, 40, 40)}, 0)
	want = []Guide{
		{Vertical: true, Pos: 50, From: 0, To: 40},
		{Pos: 0, From: 10, To: 70},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("abut: got %+v", got)
	}
}

func TestGuidesCentres(t *testing.T) {
	got := Guides(F(20, 20, 20, 20), []Frame{F(0, 0, 60, 60)}, 0)
	want := []Guide{
		{Vertical: true, Center: true, Pos: 30, From: 0, To: 60},
		{Center: true, Pos: 30, From: 0, To: 60},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("centres: got %+v", got)
	}
}

func TestGuidesPickClosestWithinTolerance(t *testing.T) {
	anchors := []Frame{F(13, 200, 10, 10), F(11, 300, 10, 10)}
	got := Guides(F(10, 0, 50, 50), anchors, 4)
	if len(got) != 1 || !got[0].Vertical || got[0].Pos != 11 {
		t.Fatalf("got %+v, want the x=11 edge", got)
	}
	if got := Guides(F(10, 0, 50, 50), anchors, 0); len(got) != 0 {
		t.Fatalf("default tolerance should see nothing, got %+v", got)
	}
}
