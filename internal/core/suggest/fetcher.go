// Package suggest alimenta el autocomplete de recetas: debouncea lo que se
// tipea, consulta las recetas más usadas y descarta respuestas viejas.
package suggest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"baby-care-log/internal/core/debounce"
	"baby-care-log/internal/platform/logger"
)

const DefaultWindow = 500 * time.Millisecond

// Source consulta las recetas más usadas de un perfil.
type Source interface {
	TopPrescriptions(ctx context.Context, profileID, searchText string) ([]string, error)
}

type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Reason es el motivo del cambio de texto, como lo informa el control de UI.
type Reason string

const (
	ReasonInput Reason = "input"
	ReasonReset Reason = "reset"
	ReasonClear Reason = "clear"
)

// Choice es una opción mostrable. Synthetic marca el `Add "x"` de texto libre.
type Choice struct {
	Label     string
	Value     string
	Synthetic bool
}

type Config struct {
	Window    time.Duration
	Scheduler debounce.Scheduler
	Logger    logger.Logger

	// OnChange se llama (sin locks tomados) cada vez que cambian estado o sugerencias.
	OnChange func()
}

type Fetcher struct {
	src       Source
	profileID string
	log       logger.Logger
	onChange  func()
	deb       *debounce.Debouncer[string]

	mu          sync.Mutex
	state       State
	suggestions []string
	seq         uint64
	cancel      context.CancelFunc
	closed      bool
	wg          sync.WaitGroup
}

func New(src Source, profileID string, cfg Config) *Fetcher {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	f := &Fetcher{
		src:       src,
		profileID: profileID,
		log:       cfg.Logger.With(map[string]any{"component": "suggest", "profile_id": profileID}),
		onChange:  cfg.OnChange,
	}
	f.deb = debounce.New(cfg.Window, f.fetch, cfg.Scheduler)
	return f
}

// Input registra un cambio de texto. reset y clear no disparan búsqueda:
// los emite el propio control al elegir una opción o limpiar.
func (f *Fetcher) Input(text string, reason Reason) {
	if reason == ReasonReset || reason == ReasonClear {
		return
	}
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return
	}

	f.deb.Cancel()
	f.deb.Call(text)
}

func (f *Fetcher) fetch(text string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.seq++
	seq := f.seq
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.state = Loading
	f.wg.Add(1)
	f.mu.Unlock()
	f.notify()

	go func() {
		defer f.wg.Done()
		defer cancel()

		out, err := f.src.TopPrescriptions(ctx, f.profileID, text)

		f.mu.Lock()
		if seq != f.seq || f.closed {
			// Respuesta vieja: ya hay otra consulta más nueva.
			f.mu.Unlock()
			return
		}
		f.cancel = nil
		f.state = Idle
		if err != nil {
			f.mu.Unlock()
			f.log.Debug("suggestions fetch failed", map[string]any{"search": text, "error": err})
			f.notify()
			return
		}
		f.suggestions = slices.Clone(out)
		f.mu.Unlock()
		f.notify()
	}()
}

func (f *Fetcher) notify() {
	if f.onChange != nil {
		f.onChange()
	}
}

func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Suggestions devuelve la última lista aplicada (puede estar desactualizada
// si la última consulta falló).
func (f *Fetcher) Suggestions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.suggestions)
}

// Options filtra las sugerencias por input (substring, sin distinguir
// mayúsculas) y agrega `Add "input"` si el texto no coincide exactamente con
// ninguna.
func (f *Fetcher) Options(input string) []Choice {
	suggestions := f.Suggestions()
	needle := strings.ToLower(strings.TrimSpace(input))

	out := make([]Choice, 0, len(suggestions)+1)
	existing := false
	for _, s := range suggestions {
		if s == input {
			existing = true
		}
		if needle == "" || strings.Contains(strings.ToLower(s), needle) {
			out = append(out, Choice{Label: s, Value: s})
		}
	}
	if input != "" && !existing {
		out = append(out, Choice{Label: fmt.Sprintf("Add %q", input), Value: input, Synthetic: true})
	}
	return out
}

// Choose devuelve el valor a guardar para la opción elegida.
func Choose(c Choice) string {
	return c.Value
}

// Wait bloquea hasta que terminen las consultas en vuelo.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// Close cancela la búsqueda programada y la consulta en vuelo.
func (f *Fetcher) Close() {
	f.deb.Cancel()

	f.mu.Lock()
	f.closed = true
	f.seq++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state = Idle
	f.mu.Unlock()
}
