package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
)

func TestFormatVoteCount(t *testing.T) {
	cases := map[int]string{
		0:   "+0",
		1:   "+1",
		42:  "+42",
		-1:  "-1",
		-17: "-17",
	}
	for n, want := range cases {
		assert.Equal(t, want, FormatVoteCount(n), "n=%d", n)
	}
}

func (s *ServiceSuite) TestVoteSums() {
	author := s.register("author", model.RoleStudent)
	v1 := s.register("v1", model.RoleStudent)
	v2 := s.register("v2", model.RoleStudent)
	v3 := s.register("v3", model.RoleStudent)
	q := s.ask(author, "votes")
	r := s.answer(author, q, "vote on me")
	empty := s.answer(author, q, "nobody votes here")

	total, err := s.votes.GetAnswerVoteCount(s.ctx, empty)
	s.Require().NoError(err)
	s.Zero(total)

	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, v1, r, VoteUp))
	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, v2, r, VoteUp))
	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, v3, r, VoteDown))
	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, v1, r, VoteUp))

	total, err = s.votes.GetAnswerVoteCount(s.ctx, r)
	s.Require().NoError(err)
	s.Equal(1, total)

	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, v2, r, VoteNone))
	total, err = s.votes.GetAnswerVoteCount(s.ctx, r)
	s.Require().NoError(err)
	s.Equal(0, total)

	views, err := s.threads.ListAnswers(s.ctx, q)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(0, views[0].Votes)
	s.Equal("+0", views[0].VotesLabel)

	s.ErrorIs(s.votes.UpdateUserVoteForAnswer(s.ctx, v1, r, 2), util.ErrValidation)
	s.ErrorIs(s.votes.UpdateUserVoteForAnswer(s.ctx, v1, 9999, VoteUp), util.ErrAnswerNotFound)
	s.ErrorIs(s.votes.UpdateUserVoteForAnswer(s.ctx, 9999, r, VoteUp), util.ErrUserNotFound)
}

func (s *ServiceSuite) TestToggleVotes() {
	author := s.register("author", model.RoleStudent)
	voter := s.register("voter", model.RoleStudent)
	q := s.ask(author, "toggle")
	r := s.answer(author, q, "click me")

	current, err := s.votes.GetUserVoteForAnswer(s.ctx, voter, r)
	s.Require().NoError(err)
	s.Equal(VoteNone, current)

	steps := []struct {
		up   bool
		want int
	}{
		{up: true, want: VoteUp},
		{up: true, want: VoteNone},
		{up: false, want: VoteDown},
		{up: true, want: VoteUp},
		{up: false, want: VoteDown},
		{up: false, want: VoteNone},
	}
	for _, step := range steps {
		var got int
		if step.up {
			got, err = s.votes.ToggleUpvote(s.ctx, voter, r)
		} else {
			got, err = s.votes.ToggleDownvote(s.ctx, voter, r)
		}
		s.Require().NoError(err)
		s.Equal(step.want, got)

		stored, err := s.votes.GetUserVoteForAnswer(s.ctx, voter, r)
		s.Require().NoError(err)
		s.Equal(step.want, stored)
	}

	total, err := s.votes.GetAnswerVoteCount(s.ctx, r)
	s.Require().NoError(err)
	s.Zero(total)
}
