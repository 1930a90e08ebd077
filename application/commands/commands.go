// Package commands defines the mutation commands of the flow engine.
// Commands are dispatched as pointers; handlers write outcomes back into the
// Result fields.
package commands

import (
	"flowforge-backend/application/services"
	"flowforge-backend/domain/comments"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/domain/versioning"
	pkgerrors "flowforge-backend/pkg/errors"
)

// AddNodeCommand appends a node of the given kind to a flow
type AddNodeCommand struct {
	FlowID   string
	Kind     valueobjects.NodeKind
	Position *valueobjects.Position
	Actor    valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *AddNodeCommand) Validate() error {
	if c.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	if !c.Kind.IsValid() {
		return pkgerrors.NewValidationError("unknown node kind " + c.Kind.String())
	}
	return nil
}

// DeleteNodeCommand removes a node and cascades edge cleanup
type DeleteNodeCommand struct {
	FlowID string
	NodeID string
	Actor  valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *DeleteNodeCommand) Validate() error {
	if c.FlowID == "" || c.NodeID == "" {
		return pkgerrors.NewValidationError("flow id and node id are required")
	}
	return nil
}

// UpdateNodeDataCommand shallow-merges a payload patch into a node
type UpdateNodeDataCommand struct {
	FlowID string
	NodeID string
	Patch  map[string]interface{}
	Actor  valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *UpdateNodeDataCommand) Validate() error {
	if c.FlowID == "" || c.NodeID == "" {
		return pkgerrors.NewValidationError("flow id and node id are required")
	}
	if len(c.Patch) == 0 {
		return pkgerrors.NewValidationError("patch is required")
	}
	return nil
}

// UpdateNodeStyleCommand merges cosmetic overrides into a node
type UpdateNodeStyleCommand struct {
	FlowID string
	NodeID string
	Style  map[string]interface{}
	Actor  valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *UpdateNodeStyleCommand) Validate() error {
	if c.FlowID == "" || c.NodeID == "" {
		return pkgerrors.NewValidationError("flow id and node id are required")
	}
	if len(c.Style) == 0 {
		return pkgerrors.NewValidationError("style is required")
	}
	return nil
}

// MoveNodeCommand updates a node's canvas position
type MoveNodeCommand struct {
	FlowID   string
	NodeID   string
	Position valueobjects.Position
	Actor    valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *MoveNodeCommand) Validate() error {
	if c.FlowID == "" || c.NodeID == "" {
		return pkgerrors.NewValidationError("flow id and node id are required")
	}
	return nil
}

// SelectNodeCommand moves the last-active pointer
type SelectNodeCommand struct {
	FlowID string
	NodeID string
}

// Validate implements bus.Command
func (c *SelectNodeCommand) Validate() error {
	if c.FlowID == "" || c.NodeID == "" {
		return pkgerrors.NewValidationError("flow id and node id are required")
	}
	return nil
}

// ConnectNodesCommand creates an edge between two existing nodes
type ConnectNodesCommand struct {
	FlowID   string
	SourceID string
	TargetID string
	Handle   string
	Actor    valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *ConnectNodesCommand) Validate() error {
	if c.FlowID == "" || c.SourceID == "" || c.TargetID == "" {
		return pkgerrors.NewValidationError("flow id, source and target are required")
	}
	return nil
}

// DisconnectEdgeCommand removes an edge
type DisconnectEdgeCommand struct {
	FlowID string
	EdgeID string
	Actor  valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *DisconnectEdgeCommand) Validate() error {
	if c.FlowID == "" || c.EdgeID == "" {
		return pkgerrors.NewValidationError("flow id and edge id are required")
	}
	return nil
}

// UpdateEdgeCommand shallow-merges a patch into an edge
type UpdateEdgeCommand struct {
	FlowID string
	EdgeID string
	Patch  aggregates.EdgePatch
	Actor  valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *UpdateEdgeCommand) Validate() error {
	if c.FlowID == "" || c.EdgeID == "" {
		return pkgerrors.NewValidationError("flow id and edge id are required")
	}
	return nil
}

// SaveVersionCommand records an explicit snapshot
type SaveVersionCommand struct {
	FlowID  string
	Message string
	Actor   valueobjects.UserRef

	Result versioning.Version
}

// Validate implements bus.Command
func (c *SaveVersionCommand) Validate() error {
	if c.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// RestoreVersionCommand replaces the live graph with a snapshot
type RestoreVersionCommand struct {
	FlowID    string
	VersionID string
	Actor     valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *RestoreVersionCommand) Validate() error {
	if c.FlowID == "" || c.VersionID == "" {
		return pkgerrors.NewValidationError("flow id and version id are required")
	}
	return nil
}

// ImportFlowCommand replaces the graph wholesale from a JSON document
type ImportFlowCommand struct {
	FlowID  string
	Payload []byte
	Actor   valueobjects.UserRef

	Result services.MutationResult
}

// Validate implements bus.Command
func (c *ImportFlowCommand) Validate() error {
	if c.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	if len(c.Payload) == 0 {
		return pkgerrors.NewValidationError("import payload is required")
	}
	return nil
}

// AddCommentCommand anchors a new comment thread to a node
type AddCommentCommand struct {
	FlowID string
	NodeID string
	Text   string
	Actor  valueobjects.UserRef

	Result         comments.Comment
	StorageWarning string
}

// Validate implements bus.Command
func (c *AddCommentCommand) Validate() error {
	if c.FlowID == "" || c.NodeID == "" {
		return pkgerrors.NewValidationError("flow id and node id are required")
	}
	if c.Text == "" {
		return pkgerrors.NewValidationError("comment text is required")
	}
	return nil
}

// AddReplyCommand appends a reply to a comment thread
type AddReplyCommand struct {
	FlowID    string
	CommentID string
	Text      string
	Actor     valueobjects.UserRef

	Result         comments.Reply
	StorageWarning string
}

// Validate implements bus.Command
func (c *AddReplyCommand) Validate() error {
	if c.FlowID == "" || c.CommentID == "" {
		return pkgerrors.NewValidationError("flow id and comment id are required")
	}
	if c.Text == "" {
		return pkgerrors.NewValidationError("reply text is required")
	}
	return nil
}

// DeleteCommentCommand removes a comment thread (author only)
type DeleteCommentCommand struct {
	FlowID    string
	CommentID string
	Actor     valueobjects.UserRef
}

// Validate implements bus.Command
func (c *DeleteCommentCommand) Validate() error {
	if c.FlowID == "" || c.CommentID == "" {
		return pkgerrors.NewValidationError("flow id and comment id are required")
	}
	return nil
}

// DeleteReplyCommand removes a reply (author only)
type DeleteReplyCommand struct {
	FlowID    string
	CommentID string
	ReplyID   string
	Actor     valueobjects.UserRef
}

// Validate implements bus.Command
func (c *DeleteReplyCommand) Validate() error {
	if c.FlowID == "" || c.CommentID == "" || c.ReplyID == "" {
		return pkgerrors.NewValidationError("flow id, comment id and reply id are required")
	}
	return nil
}

// ReloadFlowCommand drops session state so the persisted copy is re-read
type ReloadFlowCommand struct {
	FlowID string
}

// Validate implements bus.Command
func (c *ReloadFlowCommand) Validate() error {
	if c.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// DeleteFlowCommand removes a flow's persisted state and session
type DeleteFlowCommand struct {
	FlowID string
}

// Validate implements bus.Command
func (c *DeleteFlowCommand) Validate() error {
	if c.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// UpdateFlowInfoCommand replaces a flow's catalog record
type UpdateFlowInfoCommand struct {
	Info entities.FlowInfo
}

// Validate implements bus.Command
func (c *UpdateFlowInfoCommand) Validate() error {
	if c.Info.ID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}
