package optimistic

import "baby-care-log/internal/domain/events"

// Merge devuelve la lista a mostrar: una copia de canonical con los campos de
// cada mutación pendiente aplicados sobre el evento del mismo id, en orden de
// emisión. Ids desconocidos se ignoran; nunca agrega eventos ni modifica los
// argumentos.
func Merge(canonical []events.Event, pending []PendingMutation) []events.Event {
	out := make([]events.Event, len(canonical))
	copy(out, canonical)
	if len(pending) == 0 {
		return out
	}

	index := make(map[string]int, len(out))
	for i, e := range out {
		index[e.ID] = i
	}

	for _, p := range pending {
		i, ok := index[p.EventID]
		if !ok {
			continue
		}
		merged, err := events.Apply(out[i], p.Fields)
		if err != nil {
			// Un overlay que no decodifica no se muestra; el refresh lo corrige.
			continue
		}
		out[i] = merged
	}
	return out
}

// HasOverlay indica si alguna mutación pendiente apunta al evento id.
func HasOverlay(id string, pending []PendingMutation) bool {
	for _, p := range pending {
		if p.EventID == id {
			return true
		}
	}
	return false
}

// RemountKey es la identidad de fila para la UI: el hash si la fila tiene un
// overlay (fuerza a refrescar el estado local del editor), si no el id.
func RemountKey(e events.Event, pending []PendingMutation) string {
	if HasOverlay(e.ID, pending) {
		return e.Hash()
	}
	return e.ID
}
