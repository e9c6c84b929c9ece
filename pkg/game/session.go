package game

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
)

// Session is the viewer state worth keeping between runs: the camera, the
// layers switched off and the map edits made so far.
type Session struct {
	MapName string
	SavedAt time.Time

	Camera   Camera
	Hidden   []objects.Kind
	IconsAt  []mapmodel.IntersectionID
	AllIcons bool

	LaneTypes    map[mapmodel.LaneID]mapmodel.LaneType
	RemovedTurns []mapmodel.TurnID
}

// SaveToFile writes the session as JSON.
func (s *Session) SaveToFile(filename string) error {
	s.SavedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads a session written by SaveToFile.
func LoadSession(filename string) (*Session, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filename, err)
	}
	return &s, nil
}

// snapshot captures the current state of the screen.
func (ms *MapScreen) snapshot() *Session {
	s := &Session{
		MapName:   ms.m.Name(),
		Camera:    ms.camera,
		Hidden:    ms.vis.HiddenKinds(),
		IconsAt:   ms.vis.IconIntersections(),
		AllIcons:  ms.vis.AllIcons(),
		LaneTypes: make(map[mapmodel.LaneID]mapmodel.LaneType, len(ms.laneEdits)),
	}
	for id := range ms.laneEdits {
		s.LaneTypes[id] = ms.m.GetL(id).Type
	}
	for _, t := range ms.removed {
		s.RemovedTurns = append(s.RemovedTurns, t.ID)
	}
	return s
}

// apply undoes the current edits and replays the ones in s. Turns that no
// longer exist or have agents on them are skipped.
func (ms *MapScreen) apply(s *Session) error {
	if s.MapName != ms.m.Name() {
		return fmt.Errorf("session is for map %q, not %q", s.MapName, ms.m.Name())
	}

	for ms.restoreTurn() {
	}
	for id, orig := range ms.laneEdits {
		ms.m.ChangeLaneType(id, orig)
		ms.dm.EditLaneType(id, ms.m, ms.cs, ms.p)
	}
	clear(ms.laneEdits)

	for id, t := range s.LaneTypes {
		if int(id) < 0 || int(id) >= len(ms.m.AllLanes()) {
			log.Printf("session: skipping unknown lane %d", id)
			continue
		}
		ms.setLaneType(id, t)
	}
	for _, id := range s.RemovedTurns {
		if _, ok := ms.m.AllTurns()[id]; !ok {
			log.Printf("session: skipping unknown %v", id)
			continue
		}
		ms.removeTurn(id)
	}

	ms.camera = s.Camera
	ms.vis = NewVisibility()
	for _, k := range s.Hidden {
		ms.vis.Toggle(k)
	}
	for _, i := range s.IconsAt {
		ms.vis.ToggleIconsAt(i)
	}
	if s.AllIcons {
		ms.vis.ToggleAllIcons()
	}
	ms.hovered = nil
	return nil
}

func (ms *MapScreen) saveSession() {
	if err := ms.snapshot().SaveToFile(ms.sessionFile); err != nil {
		log.Printf("save session: %v", err)
		return
	}
	log.Printf("saved session to %s", ms.sessionFile)
}

func (ms *MapScreen) loadSession() {
	s, err := LoadSession(ms.sessionFile)
	if err != nil {
		log.Printf("load session: %v", err)
		return
	}
	if err := ms.apply(s); err != nil {
		log.Printf("load session: %v", err)
		return
	}
	log.Printf("loaded session saved at %s", s.SavedAt.Format(time.DateTime))
}
