/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"

	"ceziladraw/internal/domain"
)

func TestMarqueeAxisAligned(t *testing.T) {
	el := rect(100, 100, 100, 100, 0)
	cases := []struct {
		box  domain.BoundingBox
		want bool
	}{
		{domain.BoundingBox{MinX: 50, MinY: 50, MaxX: 250, MaxY: 250}, true},
		{domain.BoundingBox{MinX: 150, MinY: 150, MaxX: 300, MaxY: 300}, true},
		{domain.BoundingBox{MinX: 250, MinY: 100, MaxX: 400, MaxY: 250}, false},
		{domain.BoundingBox{MinX: 100, MinY: 0, MaxX: 200, MaxY: 80}, false},
		{domain.BoundingBox{MinX: 110, MinY: 110, MaxX: 190, MaxY: 190}, true},
	}
	for _, c := range cases {
		if got := ElementIntersectsMarquee(el, c.box); got != c.want {
			t.Fatalf("marquee %+v = %v, want %v", c.box, got, c.want)
		}
	}
}

func TestMarqueeRotatedNeedsSAT(t *testing.T) {
	el := rect(100, 100, 100, 100, math.Pi/4)
	unrotated := rect(100, 100, 100, 100, 0)

	// right tip of the diamond footprint, outside the unrotated frame
	tip := domain.BoundingBox{MinX: 205, MinY: 145, MaxX: 215, MaxY: 155}
	if !ElementIntersectsMarquee(el, tip) {
		t.Fatalf("SAT should see the rotated tip")
	}
	if BoxesIntersect(BoundingBoxOf(unrotated), tip) {
		t.Fatalf("frame AABB should miss the tip")
	}

	// inside the expanded AABB corner but off the rotated square
	corner := domain.BoundingBox{MinX: 85, MinY: 85, MaxX: 95, MaxY: 95}
	if ElementIntersectsMarquee(el, corner) {
		t.Fatalf("SAT should reject the empty corner")
	}
	if !BoxesIntersect(BoundingBoxOf(el), corner) {
		t.Fatalf("expanded AABB should (wrongly) accept the corner")
	}

	if !ElementIntersectsMarquee(el, domain.BoundingBox{MinX: 120, MinY: 120, MaxX: 180, MaxY: 180}) {
		t.Fatalf("center overlap")
	}
	if ElementIntersectsMarquee(el, domain.BoundingBox{MinX: 400, MinY: 400, MaxX: 500, MaxY: 500}) {
		t.Fatalf("far marquee")
	}
}
