package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
)

func TestTargetFromIDs(t *testing.T) {
	q, a, zero := uint(3), uint(5), uint(0)

	target, err := TargetFromIDs(&q, nil)
	require.NoError(t, err)
	assert.True(t, target.IsQuestion())
	assert.Equal(t, q, target.ID())

	target, err = TargetFromIDs(nil, &a)
	require.NoError(t, err)
	assert.False(t, target.IsQuestion())
	assert.Equal(t, a, target.ID())

	for _, ids := range [][2]*uint{{nil, nil}, {&q, &a}, {&zero, nil}, {nil, &zero}} {
		_, err := TargetFromIDs(ids[0], ids[1])
		assert.ErrorIs(t, err, util.ErrInvalidTarget)
		assert.ErrorIs(t, err, util.ErrValidation)
	}
}

func (s *ServiceSuite) TestAddReview() {
	author := s.register("author", model.RoleStudent)
	reviewer := s.register("reviewer", model.RoleReviewer)
	q := s.ask(author, "review me")
	r := s.answer(author, q, "and me")

	_, err := s.reviews.AddReview(s.ctx, reviewer, ReviewInput{QuestionID: &q, AnswerID: &r, Content: "both"})
	s.ErrorIs(err, util.ErrValidation)
	_, err = s.reviews.AddReview(s.ctx, reviewer, ReviewInput{Content: "neither"})
	s.ErrorIs(err, util.ErrValidation)

	missing := uint(9999)
	_, err = s.reviews.AddReview(s.ctx, reviewer, ReviewInput{AnswerID: &missing, Content: "ghost"})
	s.ErrorIs(err, util.ErrAnswerNotFound)

	onQuestion, err := s.reviews.AddReview(s.ctx, reviewer, ReviewInput{QuestionID: &q, Content: "clear question"})
	s.Require().NoError(err)
	s.Equal(model.QuestionTarget(q), model.TargetOf(onQuestion))

	onAnswer, err := s.reviews.AddReview(s.ctx, reviewer, ReviewInput{AnswerID: &r, Content: "solid answer"})
	s.Require().NoError(err)

	got, err := s.reviews.GetAllReviews(s.ctx, model.AnswerTarget(r))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(onAnswer.ID, got[0].ID)

	updated, err := s.reviews.UpdateReviewContent(s.ctx, onAnswer.ID, "great answer")
	s.Require().NoError(err)
	s.Equal("great answer", updated.Content)

	s.Require().NoError(s.reviews.DeleteReview(s.ctx, onQuestion.ID))
	_, err = s.reviews.GetReview(s.ctx, onQuestion.ID)
	s.ErrorIs(err, util.ErrReviewNotFound)
	s.ErrorIs(s.reviews.DeleteReview(s.ctx, onQuestion.ID), util.ErrReviewNotFound)

	_, err = s.reviews.GetAllReviews(s.ctx, model.ReviewTarget{})
	s.ErrorIs(err, util.ErrInvalidTarget)
}

func (s *ServiceSuite) TestTrustedReviewsScenario() {
	student := s.register("student", model.RoleStudent)
	x := s.register("x", model.RoleReviewer)
	y := s.register("y", model.RoleReviewer)
	z := s.register("z", model.RoleReviewer)
	q := s.ask(student, "question")
	a1 := s.answer(student, q, "answer")

	s.Require().NoError(s.reviews.AddTrustedReviewer(s.ctx, student, x, 7))

	xReview, err := s.reviews.AddReview(s.ctx, x, ReviewInput{AnswerID: &a1, Content: "from x"})
	s.Require().NoError(err)
	_, err = s.reviews.AddReview(s.ctx, y, ReviewInput{AnswerID: &a1, Content: "from y"})
	s.Require().NoError(err)

	got, err := s.reviews.GetAllTrustedReviews(s.ctx, model.AnswerTarget(a1), student)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(xReview.ID, got[0].ID)
	s.Equal(7, got[0].Weight)

	s.Run("ordered by weight descending", func() {
		s.Require().NoError(s.reviews.AddTrustedReviewer(s.ctx, student, z, 9))
		zReview, err := s.reviews.AddReview(s.ctx, z, ReviewInput{AnswerID: &a1, Content: "from z"})
		s.Require().NoError(err)

		got, err := s.reviews.GetAllTrustedReviews(s.ctx, model.AnswerTarget(a1), student)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(zReview.ID, got[0].ID)
		s.Equal(xReview.ID, got[1].ID)

		s.Require().NoError(s.reviews.UpdateTrustedReviewerWeight(s.ctx, student, x, 10))
		got, err = s.reviews.GetAllTrustedReviews(s.ctx, model.AnswerTarget(a1), student)
		s.Require().NoError(err)
		s.Equal(xReview.ID, got[0].ID)
	})

	s.Run("untrusting removes reviews from the view", func() {
		s.Require().NoError(s.reviews.DeleteTrustedReviewer(s.ctx, student, x))
		s.Require().NoError(s.reviews.DeleteTrustedReviewer(s.ctx, student, x))

		got, err := s.reviews.GetAllTrustedReviews(s.ctx, model.AnswerTarget(a1), student)
		s.Require().NoError(err)
		for _, r := range got {
			s.NotEqual(xReview.ID, r.ID)
		}
	})

	s.Run("other students see nothing", func() {
		got, err := s.reviews.GetAllTrustedReviews(s.ctx, model.AnswerTarget(a1), y)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *ServiceSuite) TestTrustRules() {
	student := s.register("student", model.RoleStudent)
	reviewer := s.register("reviewer", model.RoleReviewer)
	plain := s.register("plain", model.RoleStudent)

	s.ErrorIs(s.reviews.AddTrustedReviewer(s.ctx, student, reviewer, 0), util.ErrInvalidWeight)
	s.ErrorIs(s.reviews.AddTrustedReviewer(s.ctx, student, reviewer, 11), util.ErrInvalidWeight)
	s.ErrorIs(s.reviews.AddTrustedReviewer(s.ctx, reviewer, reviewer, 5), util.ErrSelfTrust)
	s.ErrorIs(s.reviews.AddTrustedReviewer(s.ctx, student, plain, 5), util.ErrNotReviewer)
	s.ErrorIs(s.reviews.AddTrustedReviewer(s.ctx, student, 9999, 5), util.ErrUserNotFound)

	s.Require().NoError(s.reviews.AddTrustedReviewer(s.ctx, student, reviewer, 1))
	s.ErrorIs(s.reviews.AddTrustedReviewer(s.ctx, student, reviewer, 3), util.ErrDuplicateTrust)

	trusts, err := s.reviews.StudentTrustsReviewer(s.ctx, student, reviewer)
	s.Require().NoError(err)
	s.True(trusts)

	s.ErrorIs(s.reviews.UpdateTrustedReviewerWeight(s.ctx, student, reviewer, 12), util.ErrInvalidWeight)
	s.ErrorIs(s.reviews.UpdateTrustedReviewerWeight(s.ctx, student, plain, 4), util.ErrTrustNotFound)
	s.Require().NoError(s.reviews.UpdateTrustedReviewerWeight(s.ctx, student, reviewer, 4))

	list, err := s.reviews.ListTrustedReviewers(s.ctx, student)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(4, list[0].Weight)
}

func (s *ServiceSuite) TestListUserReviews() {
	author := s.register("author", model.RoleStudent)
	reviewer := s.register("reviewer", model.RoleReviewer)
	q := s.ask(author, "question")
	a := s.answer(author, q, "answer")

	_, err := s.reviews.AddReview(s.ctx, reviewer, ReviewInput{QuestionID: &q, Content: "needs more context"})
	s.Require().NoError(err)
	_, err = s.reviews.AddReview(s.ctx, reviewer, ReviewInput{AnswerID: &a, Content: "accurate and concise"})
	s.Require().NoError(err)
	_, err = s.reviews.AddReview(s.ctx, author, ReviewInput{AnswerID: &a, Content: "context is mine"})
	s.Require().NoError(err)

	contents := func(dtos []ReviewLightweightDTO) []string {
		out := make([]string, 0, len(dtos))
		for _, d := range dtos {
			out = append(out, d.Content)
		}
		return out
	}

	got, err := s.reviews.ListUserReviews(s.ctx, reviewer, ListReviewsInput{Query: "CONTEXT"})
	s.Require().NoError(err)
	s.Equal([]string{"needs more context"}, contents(got))

	got, err = s.reviews.ListUserReviews(s.ctx, reviewer, ListReviewsInput{Filter: "answers"})
	s.Require().NoError(err)
	s.Equal([]string{"accurate and concise"}, contents(got))

	got, err = s.reviews.ListUserReviews(s.ctx, reviewer, ListReviewsInput{Sort: "az"})
	s.Require().NoError(err)
	s.Equal([]string{"accurate and concise", "needs more context"}, contents(got))

	got, err = s.reviews.ListUserReviews(s.ctx, reviewer, ListReviewsInput{Query: "is of the"})
	s.Require().NoError(err)
	s.Empty(got)

	_, err = s.reviews.ListUserReviews(s.ctx, reviewer, ListReviewsInput{Filter: "users"})
	s.ErrorIs(err, util.ErrValidation)
}
