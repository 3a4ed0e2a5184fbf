// Package editor tiene los dos consumidores del core de edición: la grilla
// (edición inline de un campo numérico) y el diálogo (formulario completo).
package editor

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"baby-care-log/internal/core/commands"
	"baby-care-log/internal/core/debounce"
	"baby-care-log/internal/core/optimistic"
	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/platform/logger"
)

const DefaultGridWindow = 200 * time.Millisecond

// localOrigin marca los overlays de ediciones todavía no enviadas.
const localOrigin = "local"

// Row es una fila lista para mostrar.
type Row struct {
	Event   events.Event
	Key     string // identidad de remount: hash si tiene overlay, si no id
	Label   string
	Pending bool
}

type GridConfig struct {
	Window    time.Duration
	Scheduler debounce.Scheduler
	Logger    logger.Logger
	ReadOnly  bool

	// Context se usa para los envíos disparados por el debounce. Default: Background.
	Context context.Context
}

// Grid edita eventos inline. Cada fila tiene su propio debouncer y acumula
// los campos cambiados desde el último envío.
type Grid struct {
	disp *commands.Dispatcher
	cfg  GridConfig
	log  logger.Logger

	mu   sync.Mutex
	rows map[string]*gridRow
}

type gridRow struct {
	id    string
	kind  events.Kind
	dirty events.Fields
	deb   *debounce.Debouncer[struct{}]
}

func NewGrid(disp *commands.Dispatcher, cfg GridConfig) *Grid {
	if cfg.Window <= 0 {
		cfg.Window = DefaultGridWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return &Grid{
		disp: disp,
		cfg:  cfg,
		log:  cfg.Logger.With(map[string]any{"component": "grid"}),
		rows: make(map[string]*gridRow),
	}
}

func (g *Grid) ReadOnly() bool { return g.cfg.ReadOnly }

// Rows superpone sobre canonical las ediciones en vuelo y las locales
// todavía no enviadas. Ambas se leen bajo g.mu: fire pasa una edición de
// local a en vuelo con el mismo lock, así nunca cae en el medio.
func (g *Grid) Rows(canonical []events.Event) []Row {
	g.mu.Lock()
	pending := g.disp.Tracker().Edits()
	for _, r := range g.rows {
		if len(r.dirty) > 0 {
			pending = append(pending, optimistic.PendingMutation{
				EventID:   r.id,
				Fields:    r.dirty.Clone(),
				Group:     events.ActionEditGenericEvent,
				OriginKey: localOrigin,
			})
		}
	}
	g.mu.Unlock()

	merged := optimistic.Merge(canonical, pending)
	out := make([]Row, len(merged))
	for i, e := range merged {
		out[i] = Row{
			Event:   e,
			Key:     optimistic.RemountKey(e, pending),
			Label:   events.DisplayLabel(e),
			Pending: optimistic.HasOverlay(e.ID, pending),
		}
	}
	return out
}

// SetValue fija un campo inline en unidades de display (ml, mn, cm, kg).
// El valor se acota a los límites del campo y se convierte a unidades del
// wire. Devuelve false si la grilla es de solo lectura o el campo no es
// editable inline para el kind del evento.
func (g *Grid) SetValue(e events.Event, field string, display float64) bool {
	if g.cfg.ReadOnly || e.ID == "" {
		return false
	}
	inline, ok := events.LookupInlineField(e.Kind(), field)
	if !ok {
		return false
	}

	g.mu.Lock()
	r := g.rowLocked(e)
	r.dirty[field] = toWire(inline, clamp(inline, display))
	g.mu.Unlock()

	// Mismo target (la fila): cancelar y re-armar.
	r.deb.Cancel()
	r.deb.Call(struct{}{})
	return true
}

// Step suma delta pasos al valor actual (con overlay local) del campo.
func (g *Grid) Step(e events.Event, field string, delta int) bool {
	inline, ok := events.LookupInlineField(e.Kind(), field)
	if !ok || g.cfg.ReadOnly {
		return false
	}
	current := g.DisplayValue(e, field)
	next := roundToStep(inline, current+float64(delta)*inline.Step)
	return g.SetValue(e, field, next)
}

// DisplayValue devuelve el valor del campo en unidades de display, con las
// ediciones locales aplicadas. Un campo sin valor vale 0.
func (g *Grid) DisplayValue(e events.Event, field string) float64 {
	inline, ok := events.LookupInlineField(e.Kind(), field)
	if !ok {
		return 0
	}

	g.mu.Lock()
	var dirty events.Fields
	if r, ok := g.rows[e.ID]; ok {
		dirty = r.dirty.Clone()
	}
	g.mu.Unlock()

	if len(dirty) > 0 {
		if merged, err := events.Apply(e, dirty); err == nil {
			e = merged
		}
	}
	wire, ok := toFloat(events.Encode(e)[field])
	if !ok {
		return 0
	}
	return wire / factor(inline)
}

// Cancel descarta lo programado para un evento.
func (g *Grid) Cancel(id string) {
	g.mu.Lock()
	r, ok := g.rows[id]
	if ok {
		r.dirty = events.Fields{}
	}
	g.mu.Unlock()
	if ok {
		r.deb.Cancel()
	}
}

// Flush envía ya todo lo pendiente.
func (g *Grid) Flush() {
	for _, r := range g.snapshotRows() {
		r.deb.Flush()
	}
}

// Close cancela todos los envíos programados; lo ya enviado sigue su curso.
func (g *Grid) Close() {
	for _, r := range g.snapshotRows() {
		r.deb.Cancel()
	}
	g.mu.Lock()
	g.rows = make(map[string]*gridRow)
	g.mu.Unlock()
}

func (g *Grid) snapshotRows() []*gridRow {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*gridRow, 0, len(g.rows))
	for _, r := range g.rows {
		out = append(out, r)
	}
	return out
}

func (g *Grid) rowLocked(e events.Event) *gridRow {
	if r, ok := g.rows[e.ID]; ok {
		return r
	}
	r := &gridRow{id: e.ID, kind: e.Kind(), dirty: events.Fields{}}
	r.deb = debounce.New(g.cfg.Window, func(struct{}) { g.fire(r) }, g.cfg.Scheduler)
	g.rows[e.ID] = r
	return r
}

func (g *Grid) fire(r *gridRow) {
	g.mu.Lock()
	var call *commands.Call
	if len(r.dirty) > 0 {
		call, _ = g.disp.PrepareUpdate(r.kind, r.id, r.dirty)
		r.dirty = events.Fields{}
	}
	g.mu.Unlock()

	if call != nil {
		call.Send(g.cfg.Context)
	}
}

func clamp(f events.InlineField, v float64) float64 {
	if f.Min != nil && v < *f.Min {
		v = *f.Min
	}
	if f.Max != nil && v > *f.Max {
		v = *f.Max
	}
	return v
}

func factor(f events.InlineField) float64 {
	if f.Factor == 0 {
		return 1
	}
	return f.Factor
}

// toWire convierte a unidades del wire. Las duraciones viajan como ms enteros.
func toWire(f events.InlineField, display float64) any {
	if factor(f) != 1 {
		return int64(math.Round(display * factor(f)))
	}
	return display
}

// roundToStep evita arrastrar error de coma flotante (5.4 + 0.1 = 5.500000000000001).
func roundToStep(f events.InlineField, v float64) float64 {
	s := strconv.FormatFloat(f.Step, 'f', -1, 64)
	decimals := 0
	if _, frac, ok := strings.Cut(s, "."); ok {
		decimals = len(frac)
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
