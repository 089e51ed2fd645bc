package service

import (
	"strings"

	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
)

func (s *ServiceSuite) TestUnreadAndResolutionScenario() {
	a := s.register("author", model.RoleStudent)
	b := s.register("helper", model.RoleStudent)

	q1 := s.ask(a, "Alpha title")
	r1 := s.answer(b, q1, "try turning it off and on")

	count, err := s.threads.GetQuestionUnreadCount(s.ctx, q1)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.answer(a, q1, "self reply does not count")
	count, err = s.threads.GetQuestionUnreadCount(s.ctx, q1)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.Require().NoError(s.threads.ResetQuestionUnreadCount(s.ctx, q1))
	count, err = s.threads.GetQuestionUnreadCount(s.ctx, q1)
	s.Require().NoError(err)
	s.Equal(0, count)

	s.Require().NoError(s.threads.SetResolvedAnswer(s.ctx, q1, r1))
	res, err := s.threads.GetResolution(s.ctx, q1)
	s.Require().NoError(err)
	s.True(res.Resolved)
	s.Require().NotNil(res.AnswerID)
	s.Equal(r1, *res.AnswerID)

	views, err := s.threads.ListAnswers(s.ctx, q1)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.True(views[0].IsResolved)
	s.False(views[1].IsResolved)

	s.Require().NoError(s.threads.DeleteAnswer(s.ctx, r1))
	res, err = s.threads.GetResolution(s.ctx, q1)
	s.Require().NoError(err)
	s.False(res.Resolved)
	s.Nil(res.AnswerID)
}

func (s *ServiceSuite) TestResolutionTransitions() {
	a := s.register("author", model.RoleStudent)
	b := s.register("helper", model.RoleStudent)
	q1 := s.ask(a, "first question")
	q2 := s.ask(a, "second question")
	r1 := s.answer(b, q1, "one")
	r2 := s.answer(b, q1, "two")
	other := s.answer(b, q2, "elsewhere")

	s.Require().NoError(s.threads.SetResolvedAnswer(s.ctx, q1, r1))
	s.Require().NoError(s.threads.SetResolvedAnswer(s.ctx, q1, r2))
	res, err := s.threads.GetResolution(s.ctx, q1)
	s.Require().NoError(err)
	s.Equal(r2, *res.AnswerID)

	s.ErrorIs(s.threads.SetResolvedAnswer(s.ctx, q1, other), util.ErrAnswerNotInQuestion)
	s.ErrorIs(s.threads.SetResolvedAnswer(s.ctx, q1, 9999), util.ErrAnswerNotFound)
	s.ErrorIs(s.threads.SetResolvedAnswer(s.ctx, 9999, r1), util.ErrQuestionNotFound)

	s.Require().NoError(s.threads.RemoveResolvedAnswer(s.ctx, q1))
	res, err = s.threads.GetResolution(s.ctx, q1)
	s.Require().NoError(err)
	s.False(res.Resolved)
	s.Nil(res.AnswerID)
}

func (s *ServiceSuite) TestDeleteQuestionRemovesAnswersAndVotes() {
	a := s.register("author", model.RoleStudent)
	b := s.register("helper", model.RoleStudent)
	q := s.ask(a, "doomed")
	unrelated := s.ask(a, "unrelated")
	_, err := s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: "child", Description: "d", ParentQuestionID: &q})
	s.Require().NoError(err)

	r1 := s.answer(b, q, "one")
	r2 := s.answer(a, q, "two")
	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, a, r1, VoteUp))
	s.Require().NoError(s.votes.UpdateUserVoteForAnswer(s.ctx, b, r2, VoteDown))

	views, err := s.threads.ListAnswers(s.ctx, q)
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	s.Require().NoError(s.threads.DeleteQuestion(s.ctx, q))

	_, err = s.threads.GetQuestion(s.ctx, q)
	s.ErrorIs(err, util.ErrQuestionNotFound)
	for _, v := range views {
		_, err := s.threads.GetAnswer(s.ctx, v.ID)
		s.ErrorIs(err, util.ErrAnswerNotFound)
		total, err := s.votes.GetAnswerVoteCount(s.ctx, v.ID)
		s.Require().NoError(err)
		s.Zero(total)
	}

	children, err := s.threads.ListFollowUps(s.ctx, q)
	s.Require().NoError(err)
	s.Empty(children)

	_, err = s.threads.GetQuestion(s.ctx, unrelated)
	s.NoError(err)
	s.ErrorIs(s.threads.DeleteQuestion(s.ctx, q), util.ErrQuestionNotFound)
}

func (s *ServiceSuite) TestQuestionValidation() {
	a := s.register("author", model.RoleStudent)

	_, err := s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: "  ", Description: "d"})
	s.ErrorIs(err, util.ErrValidation)

	_, err = s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: strings.Repeat("x", util.MaxTitleLength+1), Description: "d"})
	s.ErrorIs(err, util.ErrValidation)

	_, err = s.threads.AddQuestion(s.ctx, 9999, QuestionInput{Title: "t", Description: "d"})
	s.ErrorIs(err, util.ErrUserNotFound)

	missing := uint(9999)
	_, err = s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: "t", Description: "d", ParentQuestionID: &missing})
	s.ErrorIs(err, util.ErrQuestionNotFound)

	q, err := s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: "t", Description: "d"})
	s.Require().NoError(err)

	_, err = s.threads.AddAnswer(s.ctx, a, q.ID, "")
	s.ErrorIs(err, util.ErrValidation)
	_, err = s.threads.AddAnswer(s.ctx, a, 9999, "hello")
	s.ErrorIs(err, util.ErrQuestionNotFound)
}

func (s *ServiceSuite) TestUpdateQuestionAndAnswer() {
	a := s.register("author", model.RoleStudent)
	q := s.ask(a, "before")
	r := s.answer(a, q, "old content")

	updated, err := s.threads.UpdateQuestion(s.ctx, q, QuestionInput{Title: "after", Description: "new details"})
	s.Require().NoError(err)
	s.Equal("after", updated.Title)
	s.Equal("new details", updated.Description)

	ans, err := s.threads.UpdateAnswer(s.ctx, r, "new content")
	s.Require().NoError(err)
	s.Equal("new content", ans.Content)

	_, err = s.threads.UpdateQuestion(s.ctx, 9999, QuestionInput{Title: "x", Description: "y"})
	s.ErrorIs(err, util.ErrQuestionNotFound)
	_, err = s.threads.UpdateAnswer(s.ctx, 9999, "x")
	s.ErrorIs(err, util.ErrAnswerNotFound)

	mine, err := s.threads.ListUserAnswers(s.ctx, a)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("new content", mine[0].Content)
}

func (s *ServiceSuite) TestUserTextStoredVerbatim() {
	a := s.register("author", model.RoleStudent)
	b := s.register("helper", model.RoleStudent)

	title := "Q&A: is x<y valid in Go?"
	desc := "if a<b && c>d { }"
	q, err := s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: title, Description: desc})
	s.Require().NoError(err)

	stored, err := s.threads.GetQuestion(s.ctx, q.ID)
	s.Require().NoError(err)
	s.Equal(title, stored.Title)
	s.Equal(desc, stored.Description)

	code := "<script>alert(1)</script> use `x < 0`"
	ans, err := s.threads.AddAnswer(s.ctx, b, q.ID, code)
	s.Require().NoError(err)
	got, err := s.threads.GetAnswer(s.ctx, ans.ID)
	s.Require().NoError(err)
	s.Equal(code, got.Content)

	found, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{Query: "x<y"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(title, found[0].Title)
}

func (s *ServiceSuite) TestTitleLengthCountsCharacters() {
	a := s.register("author", model.RoleStudent)

	for _, title := range []string{
		strings.Repeat("&", util.MaxTitleLength),
		strings.Repeat("<", util.MaxTitleLength),
		strings.Repeat("问", util.MaxTitleLength),
	} {
		q, err := s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: title, Description: "d"})
		s.Require().NoError(err)
		s.Equal(title, q.Title)
	}

	_, err := s.threads.AddQuestion(s.ctx, a, QuestionInput{Title: strings.Repeat("&", util.MaxTitleLength+1), Description: "d"})
	s.ErrorIs(err, util.ErrValidation)
}

func (s *ServiceSuite) TestListQuestions() {
	a := s.register("author", model.RoleStudent)
	b := s.register("other", model.RoleStudent)
	alpha := s.ask(a, "Alpha title")
	s.ask(b, "beta ALPHA")
	gamma := s.ask(a, "Gamma")
	r := s.answer(b, gamma, "answer")
	s.Require().NoError(s.threads.SetResolvedAnswer(s.ctx, gamma, r))

	titles := func(dtos []QuestionLightweightDTO) []string {
		out := make([]string, 0, len(dtos))
		for _, d := range dtos {
			out = append(out, d.Title)
		}
		return out
	}

	s.Run("all stopwords yields nothing", func() {
		got, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{Query: "the and"})
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("keyword matches case-insensitively", func() {
		got, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{Query: "alpha", Sort: "oldest"})
		s.Require().NoError(err)
		s.Equal([]string{"Alpha title", "beta ALPHA"}, titles(got))
	})

	s.Run("blank query lists everything newest first", func() {
		got, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{})
		s.Require().NoError(err)
		s.Equal([]string{"Gamma", "beta ALPHA", "Alpha title"}, titles(got))
	})

	s.Run("status filters", func() {
		got, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{Filter: "resolved"})
		s.Require().NoError(err)
		s.Equal([]string{"Gamma"}, titles(got))

		got, err = s.threads.ListQuestions(s.ctx, ListQuestionsInput{Filter: "mine_unresolved", UserID: a})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(alpha, got[0].ID)

		got, err = s.threads.ListQuestions(s.ctx, ListQuestionsInput{Filter: "mine", Sort: "za", UserID: a})
		s.Require().NoError(err)
		s.Equal([]string{"Gamma", "Alpha title"}, titles(got))
	})

	s.Run("mine requires a user", func() {
		_, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{Filter: "mine"})
		s.ErrorIs(err, util.ErrValidation)
	})

	s.Run("unknown filter and sort", func() {
		_, err := s.threads.ListQuestions(s.ctx, ListQuestionsInput{Filter: "popular"})
		s.ErrorIs(err, util.ErrValidation)
		_, err = s.threads.ListQuestions(s.ctx, ListQuestionsInput{Sort: "random"})
		s.ErrorIs(err, util.ErrValidation)
	})
}
