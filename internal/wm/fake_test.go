package wm

import (
	"fmt"
	"slices"
	"testing"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// fakeBackend records the calls the Manager makes.
type fakeBackend struct {
	displays []platform.Display
	infos    map[platform.WindowID]platform.WindowInfo

	configured map[platform.WindowID]tiling.Rect
	borders    map[platform.WindowID]int
	colors     map[platform.WindowID]uint32
	fullscreen map[platform.WindowID]bool
	managed    map[platform.WindowID]bool
	gone       map[platform.WindowID]bool

	configureLog []platform.WindowID
	forwarded    []platform.ConfigureRequest
	closed       []platform.WindowID
	restacks     [][]platform.WindowID
	clientList   []platform.WindowID
	focused      platform.WindowID

	pointerX, pointerY int
}

func newFakeBackend(displays ...platform.Display) *fakeBackend {
	return &fakeBackend{
		displays:   displays,
		infos:      make(map[platform.WindowID]platform.WindowInfo),
		configured: make(map[platform.WindowID]tiling.Rect),
		borders:    make(map[platform.WindowID]int),
		colors:     make(map[platform.WindowID]uint32),
		fullscreen: make(map[platform.WindowID]bool),
		managed:    make(map[platform.WindowID]bool),
		gone:       make(map[platform.WindowID]bool),
	}
}

func (f *fakeBackend) err(id platform.WindowID) error {
	if f.gone[id] {
		return fmt.Errorf("window %d: %w", id, platform.ErrWindowGone)
	}
	return nil
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return slices.Clone(f.displays), nil }

func (f *fakeBackend) Windows() ([]platform.WindowID, error) {
	var ids []platform.WindowID
	for id := range f.infos {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeBackend) WindowInfo(id platform.WindowID) (platform.WindowInfo, error) {
	if err := f.err(id); err != nil {
		return platform.WindowInfo{}, err
	}
	info, ok := f.infos[id]
	if !ok {
		return platform.WindowInfo{}, fmt.Errorf("window %d: %w", id, platform.ErrWindowGone)
	}
	return info, nil
}

func (f *fakeBackend) Pointer() (int, int, error) { return f.pointerX, f.pointerY, nil }

func (f *fakeBackend) Manage(id platform.WindowID) error {
	f.managed[id] = true
	return f.err(id)
}

func (f *fakeBackend) Unmanage(id platform.WindowID) { delete(f.managed, id) }

func (f *fakeBackend) Configure(id platform.WindowID, r tiling.Rect, border int) error {
	if err := f.err(id); err != nil {
		return err
	}
	f.configured[id] = r
	f.borders[id] = border
	f.configureLog = append(f.configureLog, id)
	return nil
}

func (f *fakeBackend) Forward(req platform.ConfigureRequest) error {
	f.forwarded = append(f.forwarded, req)
	return nil
}

func (f *fakeBackend) SetBorderColor(id platform.WindowID, color uint32) error {
	if err := f.err(id); err != nil {
		return err
	}
	f.colors[id] = color
	return nil
}

func (f *fakeBackend) Restack(ids []platform.WindowID) error {
	f.restacks = append(f.restacks, slices.Clone(ids))
	return nil
}

func (f *fakeBackend) Focus(id platform.WindowID) error {
	if err := f.err(id); err != nil {
		return err
	}
	f.focused = id
	return nil
}

func (f *fakeBackend) Close(id platform.WindowID) error {
	f.closed = append(f.closed, id)
	return f.err(id)
}

func (f *fakeBackend) SetFullscreen(id platform.WindowID, on bool) error {
	f.fullscreen[id] = on
	return f.err(id)
}

func (f *fakeBackend) SetClientList(ids []platform.WindowID) error {
	f.clientList = slices.Clone(ids)
	return nil
}

type fakeSpawner struct{ calls [][]string }

func (s *fakeSpawner) Spawn(argv []string) { s.calls = append(s.calls, argv) }

type fakeProcs map[int]int

func (p fakeProcs) ParentPID(pid int) int { return p[pid] }

const (
	normColor = 0x444444
	selColor  = 0x005577
	urgColor  = 0xff0000
)

func testSettings() Settings {
	return Settings{
		Tags: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Layouts: []Layout{
			{Symbol: "[]=", Kind: tiling.KindTile},
			{Symbol: "><>", Kind: tiling.KindFloating},
			{Symbol: "[M]", Kind: tiling.KindMonocle},
			{Symbol: "[@]", Kind: tiling.KindSpiral},
			{Symbol: "[\\]", Kind: tiling.KindDwindle},
		},
		MFact:          0.55,
		NMaster:        1,
		BorderPx:       1,
		Snap:           32,
		ShowBar:        true,
		TopBar:         true,
		LockFullscreen: true,
		NormBorder:     normColor,
		SelBorder:      selColor,
		UrgentBorder:   urgColor,
		Rules:          rules.NewMatcher(nil),
	}
}

func display(id, x, y, w, h int) platform.Display {
	r := tiling.Rect{X: x, Y: y, Width: w, Height: h}
	return platform.Display{ID: id, Name: fmt.Sprintf("OUT-%d", id), Bounds: r, Usable: r}
}

type fixture struct {
	t     *testing.T
	m     *Manager
	b     *fakeBackend
	spawn *fakeSpawner
}

func newFixture(t *testing.T, s Settings, procs ProcessTree, displays ...platform.Display) *fixture {
	t.Helper()
	if len(displays) == 0 {
		displays = []platform.Display{display(0, 0, 0, 1920, 1080)}
	}
	b := newFakeBackend(displays...)
	sp := &fakeSpawner{}
	m, err := New(b, s, displays, Options{Spawner: sp, Procs: procs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{t: t, m: m, b: b, spawn: sp}
}

// add registers a window with the backend and attaches it.
func (fx *fixture) add(w platform.WindowID, class string, mod ...func(*platform.WindowInfo)) ClientID {
	fx.t.Helper()
	info := platform.WindowInfo{
		ID:       w,
		Class:    class,
		Instance: class,
		Title:    class,
		Bounds:   tiling.Rect{X: 10, Y: 10, Width: 400, Height: 300},
	}
	for _, f := range mod {
		f(&info)
	}
	fx.b.infos[w] = info
	id, err := fx.m.Attach(info)
	if err != nil {
		fx.t.Fatalf("Attach(%d): %v", w, err)
	}
	return id
}

func (fx *fixture) client(id ClientID) Client {
	fx.t.Helper()
	c, ok := fx.m.Client(id)
	if !ok {
		fx.t.Fatalf("client %d not managed", id)
	}
	return c
}

// visibleIDs returns the visible clients of monitor mon in client order.
func (fx *fixture) visibleIDs(mon int) []ClientID {
	var out []ClientID
	for _, c := range fx.m.visibleClients(fx.m.monitors[mon]) {
		out = append(out, c.ID)
	}
	return out
}
