package entities

import (
	"fmt"

	"flowforge-backend/domain/core/valueobjects"
)

// NodeData is the tagged union of per-kind node payloads. Each node kind has
// exactly one concrete payload type; adding a kind means adding a struct and
// extending EmptyData, which keeps the catalog compile-checked instead of a
// runtime switch with silent fallthrough.
type NodeData interface {
	// Kind returns the discriminator for this payload
	Kind() valueobjects.NodeKind

	// SearchFields returns the searchable content fields of this payload, in
	// a stable order. Field names follow the wire names (text, label,
	// promptText, variable, dtmfValue, mapping).
	SearchFields() []SearchField

	// RouteTargets returns the routing references this payload carries
	// (menu options, classifier functions). Targets may be empty strings
	// (unresolved) or dangle after a node deletion; the flow validator
	// surfaces them, they are never auto-repaired.
	RouteTargets() []RouteTarget
}

// SearchField is a named searchable value inside a payload
type SearchField struct {
	Name  string
	Value string
}

// RouteTarget is a routing reference carried inside a payload
type RouteTarget struct {
	RefID        string
	Label        string
	TargetNodeID string
}

// MenuOption is a keypress-selected route out of a menu node. Key uniqueness
// is not enforced by the model; duplicate keys are a validation warning.
type MenuOption struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	Label        string `json:"label"`
	TargetNodeID string `json:"targetNodeId"`
}

// ClassifierFunction is an AI-classification route out of an ISTT node. Same
// shape as a menu option, different emission source.
type ClassifierFunction struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TargetNodeID string `json:"targetNodeId"`
}

// PlayData plays a pre-recorded prompt
type PlayData struct {
	Text    string `json:"text"`
	BargeIn bool   `json:"bargeIn"`
}

func (PlayData) Kind() valueobjects.NodeKind { return valueobjects.KindPlay }
func (d PlayData) SearchFields() []SearchField {
	return []SearchField{{Name: "text", Value: d.Text}}
}
func (PlayData) RouteTargets() []RouteTarget { return nil }

// MenuData presents keypress options and routes per option
type MenuData struct {
	PromptText string       `json:"promptText"`
	Retries    int          `json:"retries"`
	Options    []MenuOption `json:"options"`
}

func (MenuData) Kind() valueobjects.NodeKind { return valueobjects.KindMenu }
func (d MenuData) SearchFields() []SearchField {
	return []SearchField{{Name: "promptText", Value: d.PromptText}}
}
func (d MenuData) RouteTargets() []RouteTarget {
	targets := make([]RouteTarget, 0, len(d.Options))
	for _, opt := range d.Options {
		targets = append(targets, RouteTarget{RefID: opt.ID, Label: opt.Label, TargetNodeID: opt.TargetNodeID})
	}
	return targets
}

// CollectData gathers a fixed-length digit string into a variable
type CollectData struct {
	PromptText string `json:"promptText"`
	Variable   string `json:"variable"`
	MaxDigits  int    `json:"maxDigits"`
	TimeoutSec int    `json:"timeoutSec"`
}

func (CollectData) Kind() valueobjects.NodeKind { return valueobjects.KindCollect }
func (d CollectData) SearchFields() []SearchField {
	return []SearchField{
		{Name: "promptText", Value: d.PromptText},
		{Name: "variable", Value: d.Variable},
	}
}
func (CollectData) RouteTargets() []RouteTarget { return nil }

// RecordData records caller audio
type RecordData struct {
	PromptText string `json:"promptText"`
	Variable   string `json:"variable"`
	MaxSeconds int    `json:"maxSeconds"`
	Beep       bool   `json:"beep"`
}

func (RecordData) Kind() valueobjects.NodeKind { return valueobjects.KindRecord }
func (d RecordData) SearchFields() []SearchField {
	return []SearchField{
		{Name: "promptText", Value: d.PromptText},
		{Name: "variable", Value: d.Variable},
	}
}
func (RecordData) RouteTargets() []RouteTarget { return nil }

// DTMFData captures a single expected keypress value
type DTMFData struct {
	PromptText string `json:"promptText"`
	DTMFValue  string `json:"dtmfValue"`
	Variable   string `json:"variable"`
}

func (DTMFData) Kind() valueobjects.NodeKind { return valueobjects.KindDTMF }
func (d DTMFData) SearchFields() []SearchField {
	return []SearchField{
		{Name: "promptText", Value: d.PromptText},
		{Name: "dtmfValue", Value: d.DTMFValue},
		{Name: "variable", Value: d.Variable},
	}
}
func (DTMFData) RouteTargets() []RouteTarget { return nil }

// DDTMFData captures multi-digit input with mapping rules
type DDTMFData struct {
	PromptText string `json:"promptText"`
	Mapping    string `json:"mapping"`
	Variable   string `json:"variable"`
	MaxDigits  int    `json:"maxDigits"`
}

func (DDTMFData) Kind() valueobjects.NodeKind { return valueobjects.KindDDTMF }
func (d DDTMFData) SearchFields() []SearchField {
	return []SearchField{
		{Name: "promptText", Value: d.PromptText},
		{Name: "mapping", Value: d.Mapping},
		{Name: "variable", Value: d.Variable},
	}
}
func (DDTMFData) RouteTargets() []RouteTarget { return nil }

// WaitData pauses the call
type WaitData struct {
	Seconds int `json:"seconds"`
}

func (WaitData) Kind() valueobjects.NodeKind { return valueobjects.KindWait }
func (WaitData) SearchFields() []SearchField { return nil }
func (WaitData) RouteTargets() []RouteTarget { return nil }

// TTSData synthesizes speech from text
type TTSData struct {
	Text    string `json:"text"`
	Voice   string `json:"voice"`
	BargeIn bool   `json:"bargeIn"`
}

func (TTSData) Kind() valueobjects.NodeKind { return valueobjects.KindTTS }
func (d TTSData) SearchFields() []SearchField {
	return []SearchField{{Name: "text", Value: d.Text}}
}
func (TTSData) RouteTargets() []RouteTarget { return nil }

// STTData transcribes caller speech into a variable
type STTData struct {
	PromptText string `json:"promptText"`
	Variable   string `json:"variable"`
	Language   string `json:"language"`
}

func (STTData) Kind() valueobjects.NodeKind { return valueobjects.KindSTT }
func (d STTData) SearchFields() []SearchField {
	return []SearchField{
		{Name: "promptText", Value: d.PromptText},
		{Name: "variable", Value: d.Variable},
	}
}
func (STTData) RouteTargets() []RouteTarget { return nil }

// ISTTData routes by classifying caller speech against named functions
type ISTTData struct {
	PromptText string               `json:"promptText"`
	Language   string               `json:"language"`
	Functions  []ClassifierFunction `json:"functions"`
}

func (ISTTData) Kind() valueobjects.NodeKind { return valueobjects.KindISTT }
func (d ISTTData) SearchFields() []SearchField {
	return []SearchField{{Name: "promptText", Value: d.PromptText}}
}
func (d ISTTData) RouteTargets() []RouteTarget {
	targets := make([]RouteTarget, 0, len(d.Functions))
	for _, fn := range d.Functions {
		targets = append(targets, RouteTarget{RefID: fn.ID, Label: fn.Name, TargetNodeID: fn.TargetNodeID})
	}
	return targets
}

// TerminatorData hard-stops the call
type TerminatorData struct {
	Reason string `json:"reason"`
}

func (TerminatorData) Kind() valueobjects.NodeKind { return valueobjects.KindTerminator }
func (TerminatorData) SearchFields() []SearchField { return nil }
func (TerminatorData) RouteTargets() []RouteTarget { return nil }

// EndData marks a normal flow end
type EndData struct {
	Label string `json:"label"`
}

func (EndData) Kind() valueobjects.NodeKind { return valueobjects.KindEnd }
func (d EndData) SearchFields() []SearchField {
	return []SearchField{{Name: "label", Value: d.Label}}
}
func (EndData) RouteTargets() []RouteTarget { return nil }

// DecisionData branches on a variable against mapping rules
type DecisionData struct {
	Variable string `json:"variable"`
	Mapping  string `json:"mapping"`
}

func (DecisionData) Kind() valueobjects.NodeKind { return valueobjects.KindDecision }
func (d DecisionData) SearchFields() []SearchField {
	return []SearchField{
		{Name: "variable", Value: d.Variable},
		{Name: "mapping", Value: d.Mapping},
	}
}
func (DecisionData) RouteTargets() []RouteTarget { return nil }

// TransferData hands the call to an external destination
type TransferData struct {
	Destination string `json:"destination"`
	TimeoutSec  int    `json:"timeoutSec"`
}

func (TransferData) Kind() valueobjects.NodeKind { return valueobjects.KindTransfer }
func (d TransferData) SearchFields() []SearchField {
	return []SearchField{{Name: "label", Value: d.Destination}}
}
func (TransferData) RouteTargets() []RouteTarget { return nil }

// SetVariableData assigns a value to a flow variable
type SetVariableData struct {
	Variable string `json:"variable"`
	Value    string `json:"value"`
}

func (SetVariableData) Kind() valueobjects.NodeKind { return valueobjects.KindSetVariable }
func (d SetVariableData) SearchFields() []SearchField {
	return []SearchField{{Name: "variable", Value: d.Variable}}
}
func (SetVariableData) RouteTargets() []RouteTarget { return nil }

// ShapeData is a visual annotation shape
type ShapeData struct {
	Label string `json:"label"`
	Shape string `json:"shape"`
}

func (ShapeData) Kind() valueobjects.NodeKind { return valueobjects.KindShape }
func (d ShapeData) SearchFields() []SearchField {
	return []SearchField{{Name: "label", Value: d.Label}}
}
func (ShapeData) RouteTargets() []RouteTarget { return nil }

// LabelData is a free-floating text annotation
type LabelData struct {
	Label string `json:"label"`
}

func (LabelData) Kind() valueobjects.NodeKind { return valueobjects.KindLabel }
func (d LabelData) SearchFields() []SearchField {
	return []SearchField{{Name: "label", Value: d.Label}}
}
func (LabelData) RouteTargets() []RouteTarget { return nil }

// EmptyData returns a zero-value payload for the given kind. Used by the
// JSON codec to decode the tagged union; defaults come from the schema
// registry instead.
func EmptyData(kind valueobjects.NodeKind) (NodeData, error) {
	switch kind {
	case valueobjects.KindPlay:
		return &PlayData{}, nil
	case valueobjects.KindMenu:
		return &MenuData{}, nil
	case valueobjects.KindCollect:
		return &CollectData{}, nil
	case valueobjects.KindRecord:
		return &RecordData{}, nil
	case valueobjects.KindDTMF:
		return &DTMFData{}, nil
	case valueobjects.KindDDTMF:
		return &DDTMFData{}, nil
	case valueobjects.KindWait:
		return &WaitData{}, nil
	case valueobjects.KindTTS:
		return &TTSData{}, nil
	case valueobjects.KindSTT:
		return &STTData{}, nil
	case valueobjects.KindISTT:
		return &ISTTData{}, nil
	case valueobjects.KindTerminator:
		return &TerminatorData{}, nil
	case valueobjects.KindEnd:
		return &EndData{}, nil
	case valueobjects.KindDecision:
		return &DecisionData{}, nil
	case valueobjects.KindTransfer:
		return &TransferData{}, nil
	case valueobjects.KindSetVariable:
		return &SetVariableData{}, nil
	case valueobjects.KindShape:
		return &ShapeData{}, nil
	case valueobjects.KindLabel:
		return &LabelData{}, nil
	default:
		return nil, fmt.Errorf("unknown node kind: %q", kind)
	}
}
