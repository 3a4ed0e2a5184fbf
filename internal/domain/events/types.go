package events

// Kind es el discriminante del evento: decide qué variante de Details aplica.
type Kind string

const (
	KindBottleFeed   Kind = "BOTTLE_FEED"
	KindPumping      Kind = "PUMPING"
	KindNursing      Kind = "NURSING"
	KindDiaperChange Kind = "DIAPER_CHANGE"
	KindPlay         Kind = "PLAY"
	KindSleep        Kind = "SLEEP"
	KindBath         Kind = "BATH"
	KindMeasurement  Kind = "MEASUREMENT"
	KindMedicine     Kind = "MEDICINE"
	KindNote         Kind = "NOTE"
	KindTravel       Kind = "TRAVEL"
)

// Kinds devuelve el conjunto cerrado de kinds soportados, en orden estable.
func Kinds() []Kind {
	return []Kind{
		KindBottleFeed,
		KindPumping,
		KindNursing,
		KindDiaperChange,
		KindPlay,
		KindSleep,
		KindBath,
		KindMeasurement,
		KindMedicine,
		KindNote,
		KindTravel,
	}
}

// Known indica si k pertenece a la enumeración.
func (k Kind) Known() bool {
	_, ok := kindFields[k]
	return ok
}

// NotePurpose distingue los sub-propósitos de una nota.
type NotePurpose string

const (
	NotePurposeGeneric      NotePurpose = ""
	NotePurposeMemory       NotePurpose = "MEMORY"
	NotePurposeFoodFirstTry NotePurpose = "FOOD_FIRST_TRY"
)

// UnspecifiedValue es un valor válido, distinto de vacío: el usuario registró
// el evento sin saber el dato (p.ej. medicamento sin receta conocida).
const UnspecifiedValue = "__UNSPECIFIED__"

func IsUnspecified(s string) bool {
	return s == UnspecifiedValue
}

// Nombres de campos en el formato plano del wire.
const (
	FieldID        = "id"
	FieldProfileID = "profileId"
	FieldKind      = "kind"
	FieldTime      = "time"
	FieldComment   = "comment"
	FieldHash      = "hash"

	FieldVolume            = "volume"
	FieldFormulaMilkVolume = "formulaMilkVolume"
	FieldDuration          = "duration"
	FieldLeftDuration      = "leftDuration"
	FieldRightDuration     = "rightDuration"
	FieldPee               = "pee"
	FieldPoop              = "poop"
	FieldHeight            = "height"
	FieldWeight            = "weight"
	FieldPrescription      = "prescription"
	FieldPurpose           = "purpose"
	FieldTitle             = "title"
	FieldDestination       = "destination"
	FieldEndTime           = "endTime"
)

// kindFields: campos propios de cada variante (sin los comunes).
var kindFields = map[Kind][]string{
	KindBottleFeed:   {FieldVolume, FieldFormulaMilkVolume, FieldDuration},
	KindPumping:      {FieldVolume, FieldDuration},
	KindNursing:      {FieldLeftDuration, FieldRightDuration},
	KindDiaperChange: {FieldPee, FieldPoop},
	KindPlay:         {FieldDuration},
	KindSleep:        {FieldDuration},
	KindBath:         {FieldDuration},
	KindMeasurement:  {FieldHeight, FieldWeight},
	KindMedicine:     {FieldPrescription},
	KindNote:         {FieldPurpose, FieldTitle},
	KindTravel:       {FieldDestination, FieldEndTime},
}

// FieldsOf devuelve los campos específicos de la variante k.
// Para un kind desconocido devuelve nil.
func FieldsOf(k Kind) []string {
	fs := kindFields[k]
	if fs == nil {
		return nil
	}
	out := make([]string, len(fs))
	copy(out, fs)
	return out
}

// HasField indica si field es común o propio de k.
func HasField(k Kind, field string) bool {
	switch field {
	case FieldID, FieldProfileID, FieldKind, FieldTime, FieldComment, FieldHash:
		return true
	}
	for _, f := range kindFields[k] {
		if f == field {
			return true
		}
	}
	return false
}

// InlineField describe un campo numérico editable directamente desde la grilla.
// Factor convierte la unidad de display a la del wire (min -> ms).
type InlineField struct {
	Name   string
	Unit   string
	Min    *float64
	Max    *float64
	Step   float64
	Factor float64
}

func bound(v float64) *float64 { return &v }

var inlineFields = map[Kind][]InlineField{
	KindBottleFeed: {
		{Name: FieldVolume, Unit: "ml", Min: bound(0), Max: bound(1000), Step: 5, Factor: 1},
	},
	KindPumping: {
		{Name: FieldVolume, Unit: "ml", Min: bound(0), Max: bound(1000), Step: 5, Factor: 1},
	},
	KindNursing: {
		{Name: FieldLeftDuration, Unit: "mn", Step: 1, Factor: 60 * 1000},
		{Name: FieldRightDuration, Unit: "mn", Step: 1, Factor: 60 * 1000},
	},
	KindMeasurement: {
		{Name: FieldHeight, Unit: "cm", Min: bound(0), Max: bound(300), Step: 1, Factor: 1},
		{Name: FieldWeight, Unit: "kg", Min: bound(0), Max: bound(100), Step: 0.1, Factor: 1},
	},
}

// InlineFields lista los campos numéricos editables inline para k.
func InlineFields(k Kind) []InlineField {
	fs := inlineFields[k]
	out := make([]InlineField, len(fs))
	copy(out, fs)
	return out
}

// LookupInlineField busca un campo inline por nombre.
func LookupInlineField(k Kind, name string) (InlineField, bool) {
	for _, f := range inlineFields[k] {
		if f.Name == name {
			return f, true
		}
	}
	return InlineField{}, false
}
