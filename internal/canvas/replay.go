/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ceziladraw/internal/tool"
)

// Event is one line of a recorded input session.
type Event struct {
	Type    string  `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	DX      float64 `json:"dx,omitempty"`
	DY      float64 `json:"dy,omitempty"`
	Buttons int     `json:"buttons,omitempty"`
	Key     string  `json:"key,omitempty"`
	Text    string  `json:"text,omitempty"`
	Shift   bool    `json:"shift,omitempty"`
	Alt     bool    `json:"alt,omitempty"`
	Ctrl    bool    `json:"ctrl,omitempty"`
	Meta    bool    `json:"meta,omitempty"`
	Repeat  bool    `json:"repeat,omitempty"`
}

// Dispatch feeds ev to the handler. DX and DY are the pointer movement for
// pointer events and the wheel deltas for wheel events.
func (h *EventHandler) Dispatch(ev Event) error {
	p := PointerInput{
		X: ev.X, Y: ev.Y, MovementX: ev.DX, MovementY: ev.DY,
		Buttons: ev.Buttons, Shift: ev.Shift, Alt: ev.Alt, Ctrl: ev.Ctrl, Meta: ev.Meta,
	}
	k := tool.KeyEvent{Key: ev.Key, Shift: ev.Shift, Alt: ev.Alt, Ctrl: ev.Ctrl, Meta: ev.Meta, Repeat: ev.Repeat}
	switch strings.ToLower(ev.Type) {
	case "pointerdown":
		h.PointerDown(p)
	case "pointermove":
		h.PointerMove(p)
	case "pointerup":
		h.PointerUp(p)
	case "dblclick":
		h.DoubleClick(p)
	case "wheel":
		h.Wheel(WheelInput{X: ev.X, Y: ev.Y, DeltaX: ev.DX, DeltaY: ev.DY, Ctrl: ev.Ctrl, Meta: ev.Meta})
	case "keydown":
		h.KeyDown(k)
	case "keyup":
		h.KeyUp(k)
	case "input":
		h.TextInput(ev.Text)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// Replay dispatches newline-delimited JSON events from r and returns how many
// were applied. Blank lines and lines starting with # are skipped.
func (h *EventHandler) Replay(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n, line := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if err := h.Dispatch(ev); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read events: %w", err)
	}
	return n, nil
}
