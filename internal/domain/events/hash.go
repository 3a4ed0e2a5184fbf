package events

import (
	"encoding/json"
	"hash/fnv"
	"strconv"
)

// Hash es un token de detección de cambios (no criptográfico): cambia si y solo
// si cambia algún campo observable. La UI lo usa como key de remount.
func (e Event) Hash() string {
	// json.Marshal ordena las keys del map: la salida es estable.
	b, err := json.Marshal(map[string]any(Encode(e)))
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return strconv.FormatUint(h.Sum64(), 16)
}
