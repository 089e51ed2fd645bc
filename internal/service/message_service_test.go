package service

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
)

func (s *ServiceSuite) unread(userID uint) bool {
	user, err := s.users.GetUser(s.ctx, userID)
	s.Require().NoError(err)
	return user.HasUnreadMsgs
}

func (s *ServiceSuite) TestPrivateMessageThread() {
	author := s.register("author", model.RoleStudent)
	commenter := s.register("commenter", model.RoleStudent)
	q := s.ask(author, "question")

	thread := repository.ThreadKey{
		AuthorID:    author,
		CommenterID: commenter,
		ParentType:  model.ParentQuestion,
		ParentID:    q,
	}

	_, err := s.messages.AddPrivateMessage(s.ctx, MessageInput{Thread: thread, Content: "can you clarify?"})
	s.Require().NoError(err)
	s.True(s.unread(author))
	s.False(s.unread(commenter))

	_, err = s.messages.AddPrivateMessage(s.ctx, MessageInput{Thread: thread, FromAuthor: true, Content: "sure"})
	s.Require().NoError(err)
	s.True(s.unread(commenter))

	msgs, err := s.messages.GetAllPrivateMessages(s.ctx, thread)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("can you clarify?", msgs[0].Content)
	s.False(msgs[0].IsAuthor)
	s.True(msgs[1].IsAuthor)

	s.Require().NoError(s.messages.MarkThreadRead(s.ctx, thread, true))
	s.False(s.unread(author))
	s.True(s.unread(commenter))

	msgs, err = s.messages.GetAllPrivateMessages(s.ctx, thread)
	s.Require().NoError(err)
	s.True(msgs[0].IsRead)
	s.False(msgs[1].IsRead)

	s.Require().NoError(s.messages.MarkThreadRead(s.ctx, thread, false))
	s.False(s.unread(commenter))

	threads, err := s.messages.ListThreads(s.ctx, commenter)
	s.Require().NoError(err)
	s.Equal([]repository.ThreadKey{thread}, threads)
}

func (s *ServiceSuite) TestMessageThreadValidation() {
	author := s.register("author", model.RoleStudent)
	commenter := s.register("commenter", model.RoleStudent)
	q := s.ask(author, "question")
	a := s.answer(commenter, q, "answer")

	cases := map[string]repository.ThreadKey{
		"self thread":     {AuthorID: author, CommenterID: author, ParentType: model.ParentQuestion, ParentID: q},
		"unknown type":    {AuthorID: author, CommenterID: commenter, ParentType: "poll", ParentID: q},
		"wrong owner":     {AuthorID: author, CommenterID: commenter, ParentType: model.ParentAnswer, ParentID: a},
		"missing parent":  {AuthorID: author, CommenterID: commenter, ParentType: model.ParentReview, ParentID: 9999},
		"missing user id": {AuthorID: author, ParentType: model.ParentQuestion, ParentID: q},
	}
	for name, key := range cases {
		s.Run(name, func() {
			_, err := s.messages.AddPrivateMessage(s.ctx, MessageInput{Thread: key, Content: "hi"})
			s.Error(err)
			if name == "missing parent" {
				s.ErrorIs(err, util.ErrReviewNotFound)
			} else {
				s.ErrorIs(err, util.ErrInvalidThread)
			}
		})
	}

	valid := repository.ThreadKey{AuthorID: author, CommenterID: commenter, ParentType: model.ParentQuestion, ParentID: q}
	_, err := s.messages.AddPrivateMessage(s.ctx, MessageInput{Thread: valid, Content: "   "})
	s.ErrorIs(err, util.ErrValidation)
	s.False(s.unread(author))
}

func (s *ServiceSuite) TestCommentersAndReviewThreads() {
	author := s.register("author", model.RoleStudent)
	first := s.register("first", model.RoleStudent)
	second := s.register("second", model.RoleReviewer)
	q := s.ask(author, "question")

	send := func(commenter uint, text string) {
		_, err := s.messages.AddPrivateMessage(s.ctx, MessageInput{
			Thread:  repository.ThreadKey{AuthorID: author, CommenterID: commenter, ParentType: model.ParentQuestion, ParentID: q},
			Content: text,
		})
		s.Require().NoError(err)
	}
	send(second, "hello")
	send(first, "hey")
	send(second, "again")

	ids, err := s.messages.GetAllMessages(s.ctx, author, model.ParentQuestion, q)
	s.Require().NoError(err)
	s.Equal([]uint{second, first}, ids)

	ids, err = s.messages.GetAllMessages(s.ctx, author, model.ParentAnswer, q)
	s.Require().NoError(err)
	s.Empty(ids)

	s.Run("messages on a deleted review stay readable", func() {
		review, err := s.reviews.AddReview(s.ctx, second, ReviewInput{QuestionID: &q, Content: "review"})
		s.Require().NoError(err)
		thread := repository.ThreadKey{AuthorID: second, CommenterID: author, ParentType: model.ParentReview, ParentID: review.ID}
		_, err = s.messages.AddPrivateMessage(s.ctx, MessageInput{Thread: thread, Content: "about your review"})
		s.Require().NoError(err)

		s.Require().NoError(s.reviews.DeleteReview(s.ctx, review.ID))
		msgs, err := s.messages.GetAllPrivateMessages(s.ctx, thread)
		s.Require().NoError(err)
		s.Len(msgs, 1)

		_, err = s.messages.AddPrivateMessage(s.ctx, MessageInput{Thread: thread, Content: "too late"})
		s.ErrorIs(err, util.ErrReviewNotFound)
	})

	s.Run("deleting the question drops its threads", func() {
		s.Require().NoError(s.threads.DeleteQuestion(s.ctx, q))
		ids, err := s.messages.GetAllMessages(s.ctx, author, model.ParentQuestion, q)
		s.Require().NoError(err)
		s.Empty(ids)
	})
}
