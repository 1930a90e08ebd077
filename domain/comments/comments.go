// Package comments implements per-node threaded comments with @mention
// extraction. The store is pure data manipulation over a flow's comment
// collection; authorization (author-only deletion) is the caller's check.
package comments

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

// Reply is a response inside a comment thread
type Reply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Text      string    `json:"text"`
	Mentions  []string  `json:"mentions"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a top-level thread anchored to a node
type Comment struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"nodeId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Text      string    `json:"text"`
	Mentions  []string  `json:"mentions"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Replies   []Reply   `json:"replies"`
}

// mentionPattern matches @identifier tokens, where the identifier is word
// characters optionally joined by dots (supports @First.Last handles)
var mentionPattern = regexp.MustCompile(`@(\w+(?:\.\w+)*)`)

// ParseMentions extracts the deduplicated, order-preserving set of mentioned
// identifiers from text, without the leading @. Extraction is pure; whether
// an identifier resolves to a real user is not this package's concern.
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	seen := map[string]bool{}
	mentions := []string{}
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			mentions = append(mentions, m[1])
		}
	}
	return mentions
}

// NewComment creates a top-level comment with extracted mentions
func NewComment(nodeID, text string, author valueobjects.UserRef, now time.Time) Comment {
	return Comment{
		ID:        uuid.New().String(),
		NodeID:    nodeID,
		UserID:    author.ID,
		UserName:  author.Name,
		UserEmail: author.Email,
		Text:      text,
		Mentions:  ParseMentions(text),
		CreatedAt: now,
		UpdatedAt: now,
		Replies:   []Reply{},
	}
}

// NewReply creates a reply with extracted mentions
func NewReply(text string, author valueobjects.UserRef, now time.Time) Reply {
	return Reply{
		ID:        uuid.New().String(),
		UserID:    author.ID,
		UserName:  author.Name,
		UserEmail: author.Email,
		Text:      text,
		Mentions:  ParseMentions(text),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Find returns the comment with the given id
func Find(comments []Comment, commentID string) (Comment, bool) {
	for _, c := range comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return Comment{}, false
}

// Append returns a new collection with the comment added
func Append(comments []Comment, comment Comment) []Comment {
	out := make([]Comment, len(comments), len(comments)+1)
	copy(out, comments)
	return append(out, comment)
}

// AppendReply returns a new collection with the reply attached to the given
// comment
func AppendReply(comments []Comment, commentID string, reply Reply) ([]Comment, error) {
	out := make([]Comment, len(comments))
	copy(out, comments)
	for i, c := range out {
		if c.ID == commentID {
			replies := make([]Reply, len(c.Replies), len(c.Replies)+1)
			copy(replies, c.Replies)
			c.Replies = append(replies, reply)
			c.UpdatedAt = reply.CreatedAt
			out[i] = c
			return out, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("comment " + commentID)
}

// Remove returns a new collection without the given comment. The contract is
// "remove if id matches"; author checks belong to the caller.
func Remove(comments []Comment, commentID string) ([]Comment, bool) {
	out := make([]Comment, 0, len(comments))
	removed := false
	for _, c := range comments {
		if c.ID == commentID {
			removed = true
			continue
		}
		out = append(out, c)
	}
	return out, removed
}

// RemoveReply returns a new collection without the given reply
func RemoveReply(comments []Comment, commentID, replyID string) ([]Comment, bool) {
	out := make([]Comment, len(comments))
	copy(out, comments)
	for i, c := range out {
		if c.ID != commentID {
			continue
		}
		replies := make([]Reply, 0, len(c.Replies))
		removed := false
		for _, r := range c.Replies {
			if r.ID == replyID {
				removed = true
				continue
			}
			replies = append(replies, r)
		}
		c.Replies = replies
		out[i] = c
		return out, removed
	}
	return out, false
}

// CountFor returns the comment activity on a node: top-level comments plus
// every reply across them. One comment with two replies counts as three.
func CountFor(comments []Comment, nodeID string) int {
	count := 0
	for _, c := range comments {
		if c.NodeID == nodeID {
			count += 1 + len(c.Replies)
		}
	}
	return count
}
