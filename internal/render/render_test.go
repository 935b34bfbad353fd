/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"ceziladraw/internal/domain"
	"ceziladraw/internal/state"
)

func TestFrameCoalescesRequests(t *testing.T) {
	var s Scheduler
	draws := 0
	if s.Frame(func() { draws++ }) {
		t.Fatalf("no request, no frame")
	}
	s.Request()
	s.Request()
	s.Request()
	if !s.Pending() {
		t.Fatalf("expected pending")
	}
	s.Frame(func() { draws++ })
	s.Frame(func() { draws++ })
	if draws != 1 || s.Frames() != 1 || s.Pending() {
		t.Fatalf("draws=%d frames=%d pending=%v", draws, s.Frames(), s.Pending())
	}
}

func TestRequestDuringDrawSchedulesNextFrame(t *testing.T) {
	var s Scheduler
	s.Request()
	s.Frame(func() { s.Request() })
	if !s.Pending() {
		t.Fatalf("request made while drawing was lost")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var s Scheduler
	ctx, cancel := context.WithCancel(context.Background())
	drawn := make(chan struct{}, 1)
	done := make(chan error, 1)
	s.Request()
	go func() {
		done <- s.Run(ctx, time.Millisecond, func() {
			select {
			case drawn <- struct{}{}:
			default:
			}
		})
	}()
	select {
	case <-drawn:
	case <-time.After(2 * time.Second):
		t.Fatalf("frame loop never drew")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
}

func TestBuildScene(t *testing.T) {
	st := state.NewStore()
	st.AddElement(domain.NewShape(domain.TypeRectangle, "b", 1, domain.Rect{Width: 10, Height: 10}, domain.DefaultStyle()))
	a := domain.NewShape(domain.TypeEllipse, "a", 1, domain.Rect{X: 20, Width: 10, Height: 10}, domain.DefaultStyle())
	a.ZIndex = -1
	st.AddElement(a)
	st.SetSelectedIDs("b")
	ui := state.DefaultUIState()
	p := domain.NewShape(domain.TypeDiamond, "p", 1, domain.Rect{Width: 3, Height: 3}, domain.DefaultStyle())
	ui.Provisional = &p

	sc := BuildScene(st.Snapshot(), &ui)
	if len(sc.Elements) != 2 || sc.Elements[0].ID != "a" {
		t.Fatalf("paint order: %+v", sc.Elements)
	}
	if !sc.HasSelection || sc.SelectionBounds.MaxX != 10 || len(sc.Selected) != 1 {
		t.Fatalf("selection: %+v", sc)
	}
	p.Width = 99
	if sc.Provisional == nil || sc.Provisional.Width != 3 || sc.Viewport.Zoom != 1 {
		t.Fatalf("provisional/viewport: %+v", sc)
	}
	if sc.HasMarquee {
		t.Fatalf("marquee without a drag: %+v", sc.Marquee)
	}

	ui.Marquee = &domain.BoundingBox{MinX: -5, MinY: -5, MaxX: 15, MaxY: 12}
	sc = BuildScene(st.Snapshot(), &ui)
	if !sc.HasMarquee || sc.Marquee.MaxX != 15 || sc.Marquee.MinY != -5 {
		t.Fatalf("marquee: %+v %v", sc.Marquee, sc.HasMarquee)
	}
}
