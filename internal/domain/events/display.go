package events

import (
	"strings"
	"time"
)

// DisplayLabel es la etiqueta de tipo que muestra la grilla: depende de más de
// un campo (diaper -> POOP/PEE, note -> MEMORY/Food/NOTE).
func DisplayLabel(e Event) string {
	switch d := e.Details.(type) {
	case DiaperChange:
		if d.Poop {
			return "POOP"
		}
		return "PEE"
	case Note:
		switch d.Purpose {
		case NotePurposeMemory:
			return "MEMORY"
		case NotePurposeFoodFirstTry:
			return "Food"
		}
		return string(KindNote)
	}
	return string(e.Kind())
}

// TravelDays devuelve los días calendario entre el inicio y el fin de un viaje,
// en la zona horaria de loc. ok=false si no es un viaje o no tiene fin.
func TravelDays(e Event, loc *time.Location) (int, bool) {
	t, isTravel := e.Details.(Travel)
	if !isTravel || t.EndTime == nil {
		return 0, false
	}
	if loc == nil {
		loc = time.UTC
	}
	return calendarDays(e.Time.In(loc), t.EndTime.In(loc)), true
}

func calendarDays(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// SearchText junta los campos de texto libre del evento (comentario, título,
// receta, destino) para el filtro q de los listados.
func SearchText(e Event) string {
	parts := []string{e.Comment}
	switch d := e.Details.(type) {
	case Medicine:
		parts = append(parts, d.Prescription)
	case Note:
		parts = append(parts, d.Title)
	case Travel:
		parts = append(parts, d.Destination)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
