package valueobjects

// NodeKind identifies a building block in an IVR call flow
type NodeKind string

const (
	KindPlay        NodeKind = "play"
	KindMenu        NodeKind = "menu"
	KindCollect     NodeKind = "collect"
	KindRecord      NodeKind = "record"
	KindDTMF        NodeKind = "dtmf"
	KindDDTMF       NodeKind = "ddtmf"
	KindWait        NodeKind = "wait"
	KindTTS         NodeKind = "tts"
	KindSTT         NodeKind = "stt"
	KindISTT        NodeKind = "istt"
	KindTerminator  NodeKind = "terminator"
	KindEnd         NodeKind = "end"
	KindDecision    NodeKind = "decision"
	KindTransfer    NodeKind = "transfer"
	KindSetVariable NodeKind = "setVariable"
	KindShape       NodeKind = "shape"
	KindLabel       NodeKind = "label"
)

// AllKinds lists every node kind in catalog order. The catalog is fixed and
// not user-extensible.
func AllKinds() []NodeKind {
	return []NodeKind{
		KindPlay, KindMenu, KindCollect, KindRecord, KindDTMF, KindDDTMF,
		KindWait, KindTTS, KindSTT, KindISTT, KindTerminator, KindEnd,
		KindDecision, KindTransfer, KindSetVariable, KindShape, KindLabel,
	}
}

// IsValid reports whether k names a catalog node kind
func (k NodeKind) IsValid() bool {
	for _, kind := range AllKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// IsTerminal reports whether k is a hard stop. A flow may contain at most one
// terminal node, and no further nodes may be appended while one exists.
func (k NodeKind) IsTerminal() bool {
	return k == KindTerminator || k == KindEnd
}

// String returns the string representation
func (k NodeKind) String() string {
	return string(k)
}
