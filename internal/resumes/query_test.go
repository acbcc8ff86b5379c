package resumes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinderDelegatesAndFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	f := NewFinder(s)

	chat, err := s.Create(ctx, CreateInput{OwnerID: "u1", Title: "Backend Engineer", Method: MethodChat, Payload: Payload{}})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateInput{OwnerID: "u1", Title: "Designer", Method: MethodForm, Payload: Payload{}})
	require.NoError(t, err)

	got, err := f.FindByID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)

	all, err := f.FindAllByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	chats, err := f.FindAllByOwner(ctx, "u1", ListFilter{Method: MethodChat})
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.ID, chats[0].ID)

	byTitle, err := f.FindAllByOwner(ctx, "u1", ListFilter{TitleContains: "design"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Designer", byTitle[0].Title)

	none, err := f.FindAllByOwner(ctx, "u1", ListFilter{Method: MethodUpload})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
