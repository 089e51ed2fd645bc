package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
)

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta"}, Keywords("  The Alpha  and BETA "))
	assert.Empty(t, Keywords("the and is of to in that it for"))
	assert.Empty(t, Keywords(""))
}

func TestSearchTerms(t *testing.T) {
	kw, ok := searchTerms("   ")
	assert.True(t, ok)
	assert.Nil(t, kw)

	kw, ok = searchTerms("the and")
	assert.False(t, ok)
	assert.Empty(t, kw)

	kw, ok = searchTerms("golang in depth")
	assert.True(t, ok)
	assert.Equal(t, []string{"golang", "depth"}, kw)
}

func TestParseOptions(t *testing.T) {
	f, err := ParseQuestionFilter("Mine_Resolved")
	require.NoError(t, err)
	assert.Equal(t, repository.QuestionsMineResolved, f)

	_, err = ParseQuestionFilter("hot")
	assert.ErrorIs(t, err, util.ErrValidation)

	rf, err := ParseReviewFilter("")
	require.NoError(t, err)
	assert.Equal(t, repository.ReviewsAll, rf)

	o, err := ParseSort("ZA")
	require.NoError(t, err)
	assert.Equal(t, repository.SortAlphaDesc, o)

	roles, err := ParseRoles([]string{"Student", "reviewer", "student"})
	require.NoError(t, err)
	assert.Equal(t, []model.Role{model.RoleStudent, model.RoleReviewer}, roles)

	_, err = ParseRoles([]string{"student", "wizard"})
	assert.ErrorIs(t, err, util.ErrValidation)
}
