package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Snapshot is an immutable copy of the state bars and remote clients read.
type Snapshot struct {
	SelectedMonitor int            `json:"selected_monitor"`
	Tags            []string       `json:"tags"`
	Layouts         []LayoutInfo   `json:"layouts"`
	Monitors        []MonitorState `json:"monitors"`
	Clients         []ClientState  `json:"clients"`
	Status          string         `json:"status"`
}

// LayoutInfo describes one palette entry.
type LayoutInfo struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
}

// MonitorState is the per-monitor part of a Snapshot.
type MonitorState struct {
	Index  int         `json:"index"`
	Name   string      `json:"name"`
	Screen tiling.Rect `json:"screen"`
	Window tiling.Rect `json:"window"`
	Bar    tiling.Rect `json:"bar"`

	ShowBar bool `json:"show_bar"`
	TopBar  bool `json:"top_bar"`

	SelectedTags uint32 `json:"selected_tags"`
	OccupiedTags uint32 `json:"occupied_tags"`
	UrgentTags   uint32 `json:"urgent_tags"`

	LayoutIndex  int     `json:"layout_index"`
	LayoutSymbol string  `json:"layout_symbol"`
	NMaster      int     `json:"nmaster"`
	MFact        float64 `json:"mfact"`

	Selected      ClientID   `json:"selected,omitempty"`
	SelectedTitle string     `json:"selected_title,omitempty"`
	Clients       []ClientID `json:"clients"`
}

// ClientState is the per-client part of a Snapshot.
type ClientState struct {
	ID         ClientID          `json:"id"`
	Window     platform.WindowID `json:"window"`
	Monitor    int               `json:"monitor"`
	Title      string            `json:"title"`
	Class      string            `json:"class"`
	Instance   string            `json:"instance"`
	Tags       uint32            `json:"tags"`
	Geometry   tiling.Rect       `json:"geometry"`
	Floating   bool              `json:"floating"`
	Fullscreen bool              `json:"fullscreen"`
	Urgent     bool              `json:"urgent"`
	Visible    bool              `json:"visible"`
	Terminal   bool              `json:"terminal"`
	Swallowing ClientID          `json:"swallowing,omitempty"`
}

// Snapshot copies the current state. The result shares no memory with the
// Manager.
func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		SelectedMonitor: m.selmon,
		Tags:            slices.Clone(m.settings.Tags),
		Status:          m.status,
	}
	for i, l := range m.settings.Layouts {
		s.Layouts = append(s.Layouts, LayoutInfo{Index: i, Symbol: l.Symbol, Kind: l.Kind.String()})
	}

	for _, mon := range m.monitors {
		ms := MonitorState{
			Index:        mon.Index,
			Name:         mon.Name,
			Screen:       mon.Screen,
			Window:       mon.Window,
			Bar:          mon.Bar,
			ShowBar:      mon.showBar(),
			TopBar:       mon.TopBar,
			SelectedTags: mon.tags(),
			LayoutIndex:  mon.layoutIndex(),
			LayoutSymbol: m.layoutSymbol(mon),
			NMaster:      mon.nmaster(),
			MFact:        mon.mfact(),
			Selected:     mon.Sel,
			Clients:      slices.Clone(mon.Clients),
		}
		if sel := m.client(mon.Sel); sel != nil {
			ms.SelectedTitle = sel.Title
		}
		for _, id := range mon.Clients {
			c := m.clients[id]
			ms.OccupiedTags |= c.Tags
			if c.Urgent {
				ms.UrgentTags |= c.Tags
			}
			s.Clients = append(s.Clients, m.clientState(c))
		}
		s.Monitors = append(s.Monitors, ms)
	}
	return s
}

func (m *Manager) clientState(c *Client) ClientState {
	return ClientState{
		ID:         c.ID,
		Window:     c.Window,
		Monitor:    c.Monitor,
		Title:      c.Title,
		Class:      c.Class,
		Instance:   c.Instance,
		Tags:       c.Tags,
		Geometry:   c.Geom,
		Floating:   c.Floating,
		Fullscreen: c.Fullscreen,
		Urgent:     c.Urgent,
		Visible:    m.visible(c),
		Terminal:   c.Terminal,
		Swallowing: c.Swallowing,
	}
}

// layoutSymbol is the palette symbol; monocle shows the visible client
// count instead when there are clients.
func (m *Manager) layoutSymbol(mon *Monitor) string {
	l := m.layoutOf(mon)
	if l.Kind == tiling.KindMonocle {
		if n := len(m.visibleClients(mon)); n > 0 {
			return fmt.Sprintf("[%d]", n)
		}
	}
	return l.Symbol
}
