// Package schema owns the per-kind default payloads for the fixed node
// catalog. Defaults are returned as fresh values on every call so callers
// never share mutable state.
package schema

import (
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

// DefaultsFor returns a freshly allocated default payload for the given node
// kind. Every field downstream code reads is present with a usable zero or
// documented default; no optional-field probing is required.
func DefaultsFor(kind valueobjects.NodeKind) (entities.NodeData, error) {
	switch kind {
	case valueobjects.KindPlay:
		return &entities.PlayData{Text: "", BargeIn: true}, nil
	case valueobjects.KindMenu:
		return &entities.MenuData{PromptText: "", Retries: 3, Options: []entities.MenuOption{}}, nil
	case valueobjects.KindCollect:
		return &entities.CollectData{Variable: "", MaxDigits: 10, TimeoutSec: 5}, nil
	case valueobjects.KindRecord:
		return &entities.RecordData{Variable: "", MaxSeconds: 60, Beep: true}, nil
	case valueobjects.KindDTMF:
		return &entities.DTMFData{DTMFValue: "", Variable: ""}, nil
	case valueobjects.KindDDTMF:
		return &entities.DDTMFData{Mapping: "", Variable: "", MaxDigits: 4}, nil
	case valueobjects.KindWait:
		return &entities.WaitData{Seconds: 2}, nil
	case valueobjects.KindTTS:
		return &entities.TTSData{Text: "", Voice: "default", BargeIn: true}, nil
	case valueobjects.KindSTT:
		return &entities.STTData{Variable: "", Language: "en-US"}, nil
	case valueobjects.KindISTT:
		return &entities.ISTTData{Language: "en-US", Functions: []entities.ClassifierFunction{}}, nil
	case valueobjects.KindTerminator:
		return &entities.TerminatorData{Reason: "hangup"}, nil
	case valueobjects.KindEnd:
		return &entities.EndData{Label: "End"}, nil
	case valueobjects.KindDecision:
		return &entities.DecisionData{Variable: "", Mapping: ""}, nil
	case valueobjects.KindTransfer:
		return &entities.TransferData{Destination: "", TimeoutSec: 30}, nil
	case valueobjects.KindSetVariable:
		return &entities.SetVariableData{Variable: "", Value: ""}, nil
	case valueobjects.KindShape:
		return &entities.ShapeData{Label: "", Shape: "rectangle"}, nil
	case valueobjects.KindLabel:
		return &entities.LabelData{Label: "Label"}, nil
	default:
		return nil, pkgerrors.NewValidationError("unknown node kind: " + string(kind))
	}
}
