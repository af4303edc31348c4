package wm

import (
	"math/bits"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// View replaces the selected monitor's view with mask. A mask of 0 returns
// to the previous view.
func (m *Manager) View(mask uint32) {
	mon := m.monitors[m.selmon]
	all := m.settings.TagMask()
	mask &= all
	if mask == mon.tags() {
		return
	}
	mon.seltags ^= 1
	p := &mon.pertag
	if mask != 0 {
		mon.tagset[mon.seltags] = mask
		p.prev = p.cur
		p.cur = slotFor(mask, all)
	} else {
		p.prev, p.cur = p.cur, p.prev
	}
	m.applyPertag(mon)
	m.focus(nil)
	m.arrange(mon)
	m.reap()
}

// ToggleView flips mask in the selected monitor's view. A result with no
// tags is refused.
func (m *Manager) ToggleView(mask uint32) {
	mon := m.monitors[m.selmon]
	all := m.settings.TagMask()
	next := mon.tags() ^ (mask & all)
	if next == 0 {
		return
	}
	mon.tagset[mon.seltags] = next
	p := &mon.pertag
	if next == all {
		p.prev = p.cur
		p.cur = 0
	}
	if p.cur == 0 && next != all || p.cur > 0 && next&(1<<uint(p.cur-1)) == 0 {
		p.prev = p.cur
		p.cur = bits.TrailingZeros32(next) + 1
	}
	m.applyPertag(mon)
	m.focus(nil)
	m.arrange(mon)
	m.reap()
}

// slotFor returns the pertag slot used while mask is viewed.
func slotFor(mask, all uint32) int {
	if mask == all {
		return 0
	}
	return bits.TrailingZeros32(mask) + 1
}

// applyPertag makes the bar visibility of the current slot effective.
func (m *Manager) applyPertag(mon *Monitor) {
	m.updateBarPos(mon)
}

// Tag assigns the selected client to mask.
func (m *Manager) Tag(mask uint32) {
	if sel := m.monitors[m.selmon].Sel; sel != 0 {
		m.SetTags(sel, mask)
	}
}

// ToggleTag flips mask in the selected client's tags, refusing to leave it
// with none.
func (m *Manager) ToggleTag(mask uint32) {
	c := m.client(m.monitors[m.selmon].Sel)
	if c == nil {
		return
	}
	next := c.Tags ^ (mask & m.settings.TagMask())
	if next == 0 {
		return
	}
	m.SetTags(c.ID, next)
}

// IncNMaster adjusts the master count of the current tag; it never drops
// below zero.
func (m *Manager) IncNMaster(delta int) {
	mon := m.monitors[m.selmon]
	p := &mon.pertag
	p.nmaster[p.cur] = max(p.nmaster[p.cur]+delta, 0)
	m.arrange(mon)
	m.reap()
}

// SetMFact sets the master fraction of the current tag, either by delta or
// absolutely. The result is clamped. It does nothing for layouts that do not
// arrange.
func (m *Manager) SetMFact(f float64, relative bool) {
	mon := m.monitors[m.selmon]
	if !m.arranges(mon) {
		return
	}
	p := &mon.pertag
	if relative {
		f += p.mfact[p.cur]
	}
	p.mfact[p.cur] = tiling.ClampMFact(f)
	m.arrange(mon)
	m.reap()
}

// SetLayout selects palette entry idx for the current tag. idx < 0 swaps to
// the previously selected layout.
func (m *Manager) SetLayout(idx int) {
	mon := m.monitors[m.selmon]
	p := &mon.pertag
	if idx >= len(m.settings.Layouts) {
		return
	}
	if idx < 0 || idx != mon.layoutIndex() {
		p.sellt[p.cur] ^= 1
	}
	if idx >= 0 {
		p.lt[p.cur][p.sellt[p.cur]] = idx
	}
	m.arrange(mon)
	m.reap()
}

// ToggleBar flips bar visibility for the current tag.
func (m *Manager) ToggleBar() {
	mon := m.monitors[m.selmon]
	p := &mon.pertag
	p.showbar[p.cur] = !p.showbar[p.cur]
	m.updateBarPos(mon)
	m.arrange(mon)
	m.reap()
}
