// Package tweak implements a small keyboard driven control panel for live
// editing of float, color and boolean values. Panels are built of folders
// holding bindings to target values addressed by key.
package tweak

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// Floats is a target of slider bindings.
type Floats interface {
	Float(key string) (float32, error)
	SetFloat(key string, v float32) error
}

// Bools is a target of toggle bindings.
type Bools interface {
	Bool(key string) (bool, error)
	SetBool(key string, v bool) error
}

// Colors is a target of color bindings.
type Colors interface {
	ColorHex() string
	SetColorHex(hex string) error
}

// Kind is the kind of control of a [Binding].
type Kind uint8

const (
	KindSlider Kind = iota
	KindColor
	KindToggle
)

// InputOpts configures a slider binding. Label defaults to the key.
type InputOpts struct {
	Label string
	Min   float32
	Max   float32
	Step  float32
}

// FolderConfig configures a folder.
type FolderConfig struct {
	Title    string
	Expanded bool
}

// DefaultColorPresets are cycled through by activating a color binding.
var DefaultColorPresets = []string{"#fff", "teal", "#ff0000", "#00ff00", "#0000ff", "#000"}

// Binding connects a control to a target value.
type Binding struct {
	kind   Kind
	key    string
	opts   InputOpts
	floats Floats
	bools  Bools
	colors Colors
	panel  *Panel
}

// Kind returns the kind of control.
func (b *Binding) Kind() Kind { return b.kind }

// Label returns the text shown next to the control.
func (b *Binding) Label() string { return b.opts.Label }

// Key returns the key of the bound value.
func (b *Binding) Key() string { return b.key }

// Opts returns the slider options of the binding.
func (b *Binding) Opts() InputOpts { return b.opts }

// Float returns the current value of a slider binding.
func (b *Binding) Float() (float32, error) {
	if b.kind != KindSlider {
		return 0, errors.New("not a slider binding")
	}
	return b.floats.Float(b.key)
}

// Input clamps v to the binding's range, snaps it to Step and writes it to the target.
func (b *Binding) Input(v float32) error {
	if b.kind != KindSlider {
		return errors.New("not a slider binding")
	} else if math32.IsNaN(v) {
		return errors.New("NaN input")
	}
	v = b.constrain(v)
	err := b.floats.SetFloat(b.key, v)
	if err != nil {
		return err
	}
	b.panel.invalidate()
	return nil
}

func (b *Binding) constrain(v float32) float32 {
	o := b.opts
	v = math32.Round(v/o.Step) * o.Step
	return ms1.Clamp(v, o.Min, o.Max)
}

// Nudge moves the bound value by steps. Sliders move by steps*Step, toggles
// flip on any non-zero step and colors cycle through the panel presets.
func (b *Binding) Nudge(steps int) error {
	if steps == 0 {
		return nil
	}
	switch b.kind {
	case KindSlider:
		v, err := b.floats.Float(b.key)
		if err != nil {
			return err
		}
		return b.Input(v + float32(steps)*b.opts.Step)
	case KindToggle:
		return b.flip()
	case KindColor:
		return b.cycle(steps)
	}
	return nil
}

// Activate flips toggles and advances colors to the next preset. Sliders are unaffected.
func (b *Binding) Activate() error {
	switch b.kind {
	case KindToggle:
		return b.flip()
	case KindColor:
		return b.cycle(1)
	}
	return nil
}

func (b *Binding) flip() error {
	v, err := b.bools.Bool(b.key)
	if err != nil {
		return err
	}
	err = b.bools.SetBool(b.key, !v)
	if err != nil {
		return err
	}
	b.panel.invalidate()
	return nil
}

func (b *Binding) cycle(steps int) error {
	presets := b.panel.ColorPresets
	if len(presets) == 0 {
		return errors.New("no color presets")
	}
	current := b.colors.ColorHex()
	idx := -1
	for i, p := range presets {
		if p == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Off-preset colors step onto the first preset going forward and
		// onto the last going backward.
		idx = 0
		if steps > 0 {
			steps--
		}
	}
	n := len(presets)
	idx = ((idx+steps)%n + n) % n
	err := b.colors.SetColorHex(presets[idx])
	if err != nil {
		return err
	}
	b.panel.invalidate()
	return nil
}

// Value returns the bound value formatted for display.
func (b *Binding) Value() string {
	switch b.kind {
	case KindSlider:
		v, err := b.floats.Float(b.key)
		if err != nil {
			return "error"
		}
		return strconv.FormatFloat(float64(v), 'f', stepDecimals(b.opts.Step), 32)
	case KindToggle:
		v, err := b.bools.Bool(b.key)
		if err != nil {
			return "error"
		}
		return strconv.FormatBool(v)
	case KindColor:
		return b.colors.ColorHex()
	}
	return ""
}

func stepDecimals(step float32) int {
	d := 0
	for step < 0.999 && d < 6 {
		step *= 10
		d++
	}
	return d
}

// Folder groups bindings and nested folders. Items keep insertion order.
type Folder struct {
	Title    string
	Expanded bool
	items    []item
	panel    *Panel
}

type item struct {
	folder  *Folder
	binding *Binding
}

// AddFolder adds a nested folder.
func (f *Folder) AddFolder(cfg FolderConfig) *Folder {
	sub := &Folder{Title: cfg.Title, Expanded: cfg.Expanded, panel: f.panel}
	f.items = append(f.items, item{folder: sub})
	f.panel.invalidate()
	return sub
}

// AddInput adds a slider bound to the float addressed by key in target.
func (f *Folder) AddInput(target Floats, key string, opts InputOpts) (*Binding, error) {
	if target == nil {
		return nil, errors.New("nil input target")
	} else if !(opts.Min < opts.Max) || !(opts.Step > 0) {
		return nil, fmt.Errorf("invalid input range [%g, %g] step %g", opts.Min, opts.Max, opts.Step)
	}
	if _, err := target.Float(key); err != nil {
		return nil, err
	}
	if opts.Label == "" {
		opts.Label = key
	}
	b := &Binding{kind: KindSlider, key: key, opts: opts, floats: target, panel: f.panel}
	f.items = append(f.items, item{binding: b})
	f.panel.invalidate()
	return b, nil
}

// AddColor adds a color input bound to target.
func (f *Folder) AddColor(target Colors, label string) (*Binding, error) {
	if target == nil {
		return nil, errors.New("nil color target")
	}
	if label == "" {
		label = "color"
	}
	b := &Binding{kind: KindColor, key: "color", opts: InputOpts{Label: label}, colors: target, panel: f.panel}
	f.items = append(f.items, item{binding: b})
	f.panel.invalidate()
	return b, nil
}

// AddToggle adds a checkbox bound to the boolean addressed by key in target.
func (f *Folder) AddToggle(target Bools, key, label string) (*Binding, error) {
	if target == nil {
		return nil, errors.New("nil toggle target")
	}
	if _, err := target.Bool(key); err != nil {
		return nil, err
	}
	if label == "" {
		label = key
	}
	b := &Binding{kind: KindToggle, key: key, opts: InputOpts{Label: label}, bools: target, panel: f.panel}
	f.items = append(f.items, item{binding: b})
	f.panel.invalidate()
	return b, nil
}

// Row is a single visible line of a panel: a folder header or a binding.
type Row struct {
	Depth   int
	Folder  *Folder
	Binding *Binding
}

// Panel is the root folder of a control panel plus its navigation state.
type Panel struct {
	Folder
	// ColorPresets are cycled through by color bindings.
	ColorPresets []string
	// Width of the rasterized panel in pixels.
	Width int
	// FPS is drawn under the title when set.
	FPS      *FPSGraph
	selected int
	dirty    bool
}

// New returns an empty expanded panel.
func New(title string) *Panel {
	p := &Panel{
		ColorPresets: DefaultColorPresets,
		Width:        260,
		dirty:        true,
	}
	p.Folder = Folder{Title: title, Expanded: true, panel: p}
	return p
}

// Rows returns the visible rows of the panel. Children of collapsed folders are omitted.
func (p *Panel) Rows() []Row {
	return p.Folder.appendRows(nil, 0)
}

func (f *Folder) appendRows(dst []Row, depth int) []Row {
	for _, it := range f.items {
		if it.binding != nil {
			dst = append(dst, Row{Depth: depth, Binding: it.binding})
			continue
		}
		dst = append(dst, Row{Depth: depth, Folder: it.folder})
		if it.folder.Expanded {
			dst = it.folder.appendRows(dst, depth+1)
		}
	}
	return dst
}

// Select moves the selection by delta rows, wrapping around.
func (p *Panel) Select(delta int) {
	rows := p.Rows()
	if len(rows) == 0 {
		p.selected = 0
		return
	}
	n := len(rows)
	p.selected = ((p.selected+delta)%n + n) % n
	p.invalidate()
}

// Selected returns the index and contents of the selected row.
func (p *Panel) Selected() (int, Row) {
	rows := p.Rows()
	if len(rows) == 0 {
		return 0, Row{}
	}
	if p.selected >= len(rows) {
		p.selected = len(rows) - 1
	}
	return p.selected, rows[p.selected]
}

// Nudge nudges the selected binding. See [Binding.Nudge].
func (p *Panel) Nudge(steps int) error {
	_, row := p.Selected()
	if row.Binding == nil {
		return nil
	}
	return row.Binding.Nudge(steps)
}

// Activate toggles the selected folder or activates the selected binding.
func (p *Panel) Activate() error {
	_, row := p.Selected()
	switch {
	case row.Folder != nil:
		row.Folder.Expanded = !row.Folder.Expanded
		p.invalidate()
	case row.Binding != nil:
		return row.Binding.Activate()
	}
	return nil
}

// Dirty reports whether the panel changed since the last call and clears the flag.
func (p *Panel) Dirty() bool {
	d := p.dirty
	p.dirty = false
	return d
}

func (p *Panel) invalidate() { p.dirty = true }
