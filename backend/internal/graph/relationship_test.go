package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "recipe-graph/backend/pkg/errors"
)

func TestParseInteractionKind(t *testing.T) {
	kind, err := ParseInteractionKind(" Liked ")
	require.NoError(t, err)
	assert.Equal(t, InteractionLiked, kind)

	kind, err = ParseInteractionKind("want_to_try")
	require.NoError(t, err)
	assert.Equal(t, InteractionWantToTry, kind)

	_, err = ParseInteractionKind("LIKED]->(x) DETACH DELETE x //")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))

	_, err = ParseInteractionKind("")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))
}

func TestInteractionTemplates_UseOwnEdgeType(t *testing.T) {
	for _, kind := range InteractionKinds() {
		templates, err := interactionTemplatesFor(kind)
		require.NoError(t, err, kind)

		edge := ":" + kind.EdgeType() + "]"
		assert.Contains(t, templates.merge, "MERGE (u)-[e"+edge, kind)
		assert.Contains(t, templates.delete, "MATCH (u)-[e"+edge, kind)
		assert.Contains(t, templates.list, "-["+edge, kind)

		for _, other := range InteractionKinds() {
			if other == kind {
				continue
			}
			assert.False(t, strings.Contains(templates.merge, ":"+other.EdgeType()+"]"),
				"%s merge template mentions %s", kind, other.EdgeType())
		}
	}
}

func TestInteractionKind_EdgeType(t *testing.T) {
	assert.Equal(t, "LIKED", InteractionLiked.EdgeType())
	assert.Equal(t, "COOKED", InteractionCooked.EdgeType())
	assert.Equal(t, "WANTS_TO_TRY", InteractionWantToTry.EdgeType())
	assert.Equal(t, "ADDED_RECIPE", InteractionAdded.EdgeType())
	assert.Equal(t, "", InteractionKind("rated").EdgeType())
}
