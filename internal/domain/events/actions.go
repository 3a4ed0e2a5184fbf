package events

import "strings"

// Action es el tag que el endpoint de comandos usa para despachar un payload.
type Action string

// ActionKey es el campo del payload que lleva la acción.
const ActionKey = "__action"

const (
	ActionEditGenericEvent      Action = "EDIT_GENERIC_EVENT"
	ActionFetchTopPrescriptions Action = "FETCH_TOP_PRESCRIPTIONS"
)

// Op es la operación que codifica una acción por kind.
type Op string

const (
	OpCreate Op = "CREATE"
	OpUpdate Op = "UPDATE"
	OpRemove Op = "REMOVE"
)

type actionKey struct {
	op   Op
	kind Kind
}

// Tabla única kind -> acción (y su inversa), construida una vez.
var (
	actionsByKind = map[actionKey]Action{}
	kindsByAction = map[Action]actionKey{}
)

func init() {
	for _, k := range Kinds() {
		for _, op := range []Op{OpCreate, OpUpdate, OpRemove} {
			a := Action(string(op) + "_" + string(k) + "_EVENT")
			actionsByKind[actionKey{op: op, kind: k}] = a
			kindsByAction[a] = actionKey{op: op, kind: k}
		}
	}
}

// ActionFor devuelve la acción para (op, kind). ok=false si el kind no es conocido.
func ActionFor(op Op, k Kind) (Action, bool) {
	a, ok := actionsByKind[actionKey{op: op, kind: k}]
	return a, ok
}

func UpdateAction(k Kind) (Action, bool) { return ActionFor(OpUpdate, k) }
func RemoveAction(k Kind) (Action, bool) { return ActionFor(OpRemove, k) }
func CreateAction(k Kind) (Action, bool) { return ActionFor(OpCreate, k) }

// ParseAction es la inversa de ActionFor.
func ParseAction(a Action) (Op, Kind, bool) {
	key, ok := kindsByAction[Action(strings.TrimSpace(string(a)))]
	if !ok {
		return "", "", false
	}
	return key.op, key.kind, true
}
