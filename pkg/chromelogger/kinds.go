package chromelogger

// Kind is the row type understood by the Chrome Logger extension.
type Kind string

const (
	KindLog            Kind = "log"
	KindWarn           Kind = "warn"
	KindError          Kind = "error"
	KindInfo           Kind = "info"
	KindGroup          Kind = "group"
	KindGroupCollapsed Kind = "groupCollapsed"
	KindGroupEnd       Kind = "groupEnd"
	KindTable          Kind = "table"
)

// Kinds lists every row type in a stable order.
var Kinds = []Kind{
	KindLog,
	KindWarn,
	KindError,
	KindInfo,
	KindGroup,
	KindGroupCollapsed,
	KindGroupEnd,
	KindTable,
}

// Valid reports whether k is one of the known row types.
func (k Kind) Valid() bool {
	switch k {
	case KindLog, KindWarn, KindError, KindInfo,
		KindGroup, KindGroupCollapsed, KindGroupEnd, KindTable:
		return true
	}
	return false
}

// group boundaries never carry a backtrace
func (k Kind) isGroup() bool {
	return k == KindGroup || k == KindGroupCollapsed || k == KindGroupEnd
}

func (k Kind) String() string { return string(k) }
