package events

import "time"

// Event es un registro del timeline de un perfil.
// Los campos de cada tipo viven en Details (una variante por Kind), así ningún
// call site necesita castear un registro plano.
type Event struct {
	ID        string
	ProfileID string

	Time    time.Time
	Comment string

	Details Details
}

// Kind deriva el discriminante de la variante. Vacío si Details es nil.
func (e Event) Kind() Kind {
	if e.Details == nil {
		return ""
	}
	return e.Details.Kind()
}

// Details es la variante de un evento. Es un conjunto cerrado: solo los tipos
// de este paquete la implementan.
type Details interface {
	Kind() Kind
	sealed()
}

type BottleFeed struct {
	Volume            float64 // ml, requerido
	FormulaMilkVolume *float64
	Duration          *time.Duration
}

type Pumping struct {
	Volume   float64
	Duration *time.Duration
}

type Nursing struct {
	LeftDuration  *time.Duration
	RightDuration *time.Duration
}

type DiaperChange struct {
	Pee  bool
	Poop bool
}

type Play struct {
	Duration *time.Duration
}

type Sleep struct {
	Duration *time.Duration
}

type Bath struct {
	Duration *time.Duration
}

type Measurement struct {
	Height *float64 // cm
	Weight *float64 // kg
}

type Medicine struct {
	Prescription string
}

type Note struct {
	Purpose NotePurpose
	Title   string
}

type Travel struct {
	Destination string
	EndTime     *time.Time
}

func (BottleFeed) Kind() Kind   { return KindBottleFeed }
func (Pumping) Kind() Kind      { return KindPumping }
func (Nursing) Kind() Kind      { return KindNursing }
func (DiaperChange) Kind() Kind { return KindDiaperChange }
func (Play) Kind() Kind         { return KindPlay }
func (Sleep) Kind() Kind        { return KindSleep }
func (Bath) Kind() Kind         { return KindBath }
func (Measurement) Kind() Kind  { return KindMeasurement }
func (Medicine) Kind() Kind     { return KindMedicine }
func (Note) Kind() Kind         { return KindNote }
func (Travel) Kind() Kind       { return KindTravel }

func (BottleFeed) sealed()   {}
func (Pumping) sealed()      {}
func (Nursing) sealed()      {}
func (DiaperChange) sealed() {}
func (Play) sealed()         {}
func (Sleep) sealed()        {}
func (Bath) sealed()         {}
func (Measurement) sealed()  {}
func (Medicine) sealed()     {}
func (Note) sealed()         {}
func (Travel) sealed()       {}
