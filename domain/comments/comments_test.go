package comments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

var author = valueobjects.UserRef{ID: "user-1", Name: "Jane", Email: "jane@example.com"}

func TestParseMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain and dotted handles", "hello @Jane.Doe and @bob", []string{"Jane.Doe", "bob"}},
		{"duplicates collapse", "@bob please ping @bob again", []string{"bob"}},
		{"no mentions", "nothing to see here", []string{}},
		{"bare at sign", "email me @ the office", []string{}},
		{"trailing punctuation excluded", "thanks @alice!", []string{"alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMentions(tt.text))
		})
	}
}

func TestNewComment_ExtractsMentions(t *testing.T) {
	c := NewComment("42", "check this @sam.lee", author, time.Now())

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "42", c.NodeID)
	assert.Equal(t, author.ID, c.UserID)
	assert.Equal(t, []string{"sam.lee"}, c.Mentions)
	assert.Empty(t, c.Replies)
}

func TestAppendReply(t *testing.T) {
	now := time.Now()
	c := NewComment("42", "root", author, now)
	threads := Append(nil, c)

	reply := NewReply("answer @jane", author, now.Add(time.Minute))
	updated, err := AppendReply(threads, c.ID, reply)
	require.NoError(t, err)

	got, ok := Find(updated, c.ID)
	require.True(t, ok)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, reply.ID, got.Replies[0].ID)
	assert.Equal(t, reply.CreatedAt, got.UpdatedAt)

	// The source collection is untouched
	original, _ := Find(threads, c.ID)
	assert.Empty(t, original.Replies)
}

func TestAppendReply_MissingComment(t *testing.T) {
	_, err := AppendReply(nil, "missing", NewReply("text", author, time.Now()))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRemove(t *testing.T) {
	now := time.Now()
	a := NewComment("1", "first", author, now)
	b := NewComment("2", "second", author, now)
	threads := Append(Append(nil, a), b)

	out, removed := Remove(threads, a.ID)
	assert.True(t, removed)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)

	_, removed = Remove(out, "missing")
	assert.False(t, removed)
}

func TestRemoveReply(t *testing.T) {
	now := time.Now()
	c := NewComment("1", "root", author, now)
	reply := NewReply("answer", author, now)
	threads, err := AppendReply(Append(nil, c), c.ID, reply)
	require.NoError(t, err)

	out, removed := RemoveReply(threads, c.ID, reply.ID)
	assert.True(t, removed)
	got, _ := Find(out, c.ID)
	assert.Empty(t, got.Replies)

	_, removed = RemoveReply(threads, c.ID, "missing")
	assert.False(t, removed)
}

func TestCountFor(t *testing.T) {
	now := time.Now()
	c := NewComment("42", "root", author, now)
	threads := Append(nil, c)
	threads, _ = AppendReply(threads, c.ID, NewReply("first", author, now))
	threads, _ = AppendReply(threads, c.ID, NewReply("second", author, now))

	other := NewComment("7", "elsewhere", author, now)
	threads = Append(threads, other)

	assert.Equal(t, 3, CountFor(threads, "42"), "one comment plus two replies")
	assert.Equal(t, 1, CountFor(threads, "7"))
	assert.Equal(t, 0, CountFor(threads, "99"))
}
