package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

func TestDefaultsFor_CoversEveryKind(t *testing.T) {
	for _, kind := range valueobjects.AllKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			data, err := DefaultsFor(kind)
			require.NoError(t, err)
			require.NotNil(t, data)
			assert.Equal(t, kind, data.Kind())
		})
	}
}

func TestDefaultsFor_UnknownKind(t *testing.T) {
	_, err := DefaultsFor(valueobjects.NodeKind("teleport"))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestDefaultsFor_ReturnsFreshValues(t *testing.T) {
	first, err := DefaultsFor(valueobjects.KindMenu)
	require.NoError(t, err)
	second, err := DefaultsFor(valueobjects.KindMenu)
	require.NoError(t, err)

	first.(*entities.MenuData).Options = append(first.(*entities.MenuData).Options,
		entities.MenuOption{ID: "o1", Key: "1"})

	assert.Empty(t, second.(*entities.MenuData).Options, "defaults must not share state")
}

func TestDefaultsFor_DocumentedDefaults(t *testing.T) {
	play, err := DefaultsFor(valueobjects.KindPlay)
	require.NoError(t, err)
	assert.True(t, play.(*entities.PlayData).BargeIn)

	menu, err := DefaultsFor(valueobjects.KindMenu)
	require.NoError(t, err)
	assert.Equal(t, 3, menu.(*entities.MenuData).Retries)
	assert.NotNil(t, menu.(*entities.MenuData).Options)

	wait, err := DefaultsFor(valueobjects.KindWait)
	require.NoError(t, err)
	assert.Equal(t, 2, wait.(*entities.WaitData).Seconds)

	term, err := DefaultsFor(valueobjects.KindTerminator)
	require.NoError(t, err)
	assert.Equal(t, "hangup", term.(*entities.TerminatorData).Reason)
}
