package service

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

// ThreadService 问题与回答，包含未读计数与“已解决”状态机
type ThreadService struct {
	DB           *gorm.DB
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	UserRepo     *repository.UserRepository
	VoteRepo     *repository.VoteRepository
	Exec         *Executor
}

func NewThreadService(
	db *gorm.DB,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	userRepo *repository.UserRepository,
	voteRepo *repository.VoteRepository,
	exec *Executor,
) *ThreadService {
	return &ThreadService{
		DB:           db,
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		UserRepo:     userRepo,
		VoteRepo:     voteRepo,
		Exec:         exec,
	}
}

type QuestionInput struct {
	Title            string `json:"title" validate:"required,nonblank,max=255"`
	Description      string `json:"description" validate:"required,nonblank,max=65535"`
	ParentQuestionID *uint  `json:"parentQuestionId"`
}

type AnswerInput struct {
	Content string `json:"content" validate:"required,nonblank,max=65535"`
}

type ListQuestionsInput struct {
	Query  string `form:"q"`
	Filter string `form:"filter"`
	Sort   string `form:"sort"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
	UserID uint   `form:"-"`
}

// 用户文本按原样校验与存储，长度按字符数计算；HTML 转义由 JSON 输出负责
func cleanQuestion(in QuestionInput) (QuestionInput, error) {
	return in, validateStruct(in)
}

func cleanAnswer(content string) (string, error) {
	return content, validateStruct(AnswerInput{Content: content})
}

func (s *ThreadService) AddQuestion(ctx context.Context, authorID uint, in QuestionInput) (*model.Question, error) {
	in, err := cleanQuestion(in)
	if err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "question.add", func(ctx context.Context) (*model.Question, error) {
		exists, err := s.UserRepo.Exists(ctx, authorID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, util.ErrUserNotFound
		}
		if in.ParentQuestionID != nil {
			ok, err := s.QuestionRepo.Exists(ctx, *in.ParentQuestionID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, util.ErrQuestionNotFound
			}
		}

		question := &model.Question{
			AuthorID:         authorID,
			Title:            in.Title,
			Description:      in.Description,
			ParentQuestionID: in.ParentQuestionID,
		}
		if err := s.QuestionRepo.Create(ctx, question); err != nil {
			return nil, err
		}
		return question, nil
	})
}

// UpdateQuestion 只修改标题和描述，父问题引用不变
func (s *ThreadService) UpdateQuestion(ctx context.Context, questionID uint, in QuestionInput) (*model.Question, error) {
	in, err := cleanQuestion(in)
	if err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "question.update", func(ctx context.Context) (*model.Question, error) {
		var updated *model.Question
		err := repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			questions := s.QuestionRepo.WithTx(tx)
			if _, err := questions.FindByID(ctx, questionID); err != nil {
				return err
			}
			if err := questions.UpdateText(ctx, questionID, in.Title, in.Description); err != nil {
				return err
			}
			q, err := questions.FindByID(ctx, questionID)
			updated = q
			return err
		})
		return updated, err
	})
}

func (s *ThreadService) GetQuestion(ctx context.Context, questionID uint) (*model.Question, error) {
	return run(ctx, s.Exec, "question.get", func(ctx context.Context) (*model.Question, error) {
		return s.QuestionRepo.FindByID(ctx, questionID)
	})
}

// ListQuestions 组合关键词、状态过滤与排序；全为停用词的查询返回空列表
func (s *ThreadService) ListQuestions(ctx context.Context, in ListQuestionsInput) ([]QuestionLightweightDTO, error) {
	filter, err := ParseQuestionFilter(in.Filter)
	if err != nil {
		return nil, err
	}
	order, err := ParseSort(in.Sort)
	if err != nil {
		return nil, err
	}
	if filter >= repository.QuestionsMine && in.UserID == 0 {
		return nil, util.Invalid("filter requires a signed-in user")
	}

	keywords, ok := searchTerms(in.Query)
	if !ok {
		return []QuestionLightweightDTO{}, nil
	}

	return run(ctx, s.Exec, "question.list", func(ctx context.Context) ([]QuestionLightweightDTO, error) {
		questions, err := s.QuestionRepo.List(ctx, repository.QuestionQuery{
			Keywords: keywords,
			Filter:   filter,
			Sort:     order,
			UserID:   in.UserID,
			Limit:    in.Limit,
			Offset:   in.Offset,
		})
		if err != nil {
			return nil, err
		}
		return toQuestionDTOs(questions), nil
	})
}

func (s *ThreadService) ListFollowUps(ctx context.Context, questionID uint) ([]QuestionLightweightDTO, error) {
	return run(ctx, s.Exec, "question.follow_ups", func(ctx context.Context) ([]QuestionLightweightDTO, error) {
		questions, err := s.QuestionRepo.ListFollowUps(ctx, questionID)
		if err != nil {
			return nil, err
		}
		return toQuestionDTOs(questions), nil
	})
}

// AddAnswer 回答者不是提问者时，提问者未读计数加一（不去重）
func (s *ThreadService) AddAnswer(ctx context.Context, authorID, questionID uint, content string) (*model.Answer, error) {
	content, err := cleanAnswer(content)
	if err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "answer.add", func(ctx context.Context) (*model.Answer, error) {
		answer := &model.Answer{AuthorID: authorID, QuestionID: questionID, Content: content}
		err := repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			questions := s.QuestionRepo.WithTx(tx)
			question, err := questions.FindByID(ctx, questionID)
			if err != nil {
				return err
			}
			exists, err := s.UserRepo.WithTx(tx).Exists(ctx, authorID)
			if err != nil {
				return err
			}
			if !exists {
				return util.ErrUserNotFound
			}

			answer.ID = 0
			if err := s.AnswerRepo.WithTx(tx).Create(ctx, answer); err != nil {
				return err
			}
			if question.AuthorID != authorID {
				return questions.IncrementUnread(ctx, questionID)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return answer, nil
	})
}

func (s *ThreadService) UpdateAnswer(ctx context.Context, answerID uint, content string) (*model.Answer, error) {
	content, err := cleanAnswer(content)
	if err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "answer.update", func(ctx context.Context) (*model.Answer, error) {
		answer, err := s.AnswerRepo.FindByID(ctx, answerID)
		if err != nil {
			return nil, err
		}
		if err := s.AnswerRepo.UpdateContent(ctx, answerID, content); err != nil {
			return nil, err
		}
		answer.Content = content
		return answer, nil
	})
}

func (s *ThreadService) GetAnswer(ctx context.Context, answerID uint) (*model.Answer, error) {
	return run(ctx, s.Exec, "answer.get", func(ctx context.Context) (*model.Answer, error) {
		return s.AnswerRepo.FindByID(ctx, answerID)
	})
}

// ListAnswers 按发布顺序返回问题下的回答，附带票数
func (s *ThreadService) ListAnswers(ctx context.Context, questionID uint) ([]AnswerView, error) {
	return run(ctx, s.Exec, "answer.list", func(ctx context.Context) ([]AnswerView, error) {
		question, err := s.QuestionRepo.FindByID(ctx, questionID)
		if err != nil {
			return nil, err
		}
		answers, err := s.AnswerRepo.ListByQuestion(ctx, questionID)
		if err != nil {
			return nil, err
		}

		ids := make([]uint, 0, len(answers))
		for _, a := range answers {
			ids = append(ids, a.ID)
		}
		totals, err := s.VoteRepo.SumByAnswers(ctx, ids)
		if err != nil {
			return nil, err
		}

		views := make([]AnswerView, 0, len(answers))
		for _, a := range answers {
			votes := totals[a.ID]
			views = append(views, AnswerView{
				Answer:     a,
				Votes:      votes,
				VotesLabel: FormatVoteCount(votes),
				IsResolved: question.ResolvedAnswerID != nil && *question.ResolvedAnswerID == a.ID,
			})
		}
		return views, nil
	})
}

func (s *ThreadService) ListUserAnswers(ctx context.Context, userID uint) ([]AnswerLightweightDTO, error) {
	return run(ctx, s.Exec, "answer.list_user", func(ctx context.Context) ([]AnswerLightweightDTO, error) {
		answers, err := s.AnswerRepo.ListByAuthor(ctx, userID)
		if err != nil {
			return nil, err
		}
		return toAnswerDTOs(answers), nil
	})
}

// ResetQuestionUnreadCount 提问者查看问题详情时清零
func (s *ThreadService) ResetQuestionUnreadCount(ctx context.Context, questionID uint) error {
	return s.Exec.Do(ctx, "question.reset_unread", func(ctx context.Context) error {
		exists, err := s.QuestionRepo.Exists(ctx, questionID)
		if err != nil {
			return err
		}
		if !exists {
			return util.ErrQuestionNotFound
		}
		return s.QuestionRepo.ResetUnread(ctx, questionID)
	})
}

func (s *ThreadService) GetQuestionUnreadCount(ctx context.Context, questionID uint) (int, error) {
	return run(ctx, s.Exec, "question.unread", func(ctx context.Context) (int, error) {
		q, err := s.QuestionRepo.FindByID(ctx, questionID)
		if err != nil {
			return 0, err
		}
		return q.AuthorUnreadCount, nil
	})
}

// SetResolvedAnswer 未解决 → 已解决(answerID)，或改为采纳另一个回答；回答必须属于该问题
func (s *ThreadService) SetResolvedAnswer(ctx context.Context, questionID, answerID uint) error {
	return s.Exec.Do(ctx, "question.set_resolved", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			questions := s.QuestionRepo.WithTx(tx)
			if _, err := questions.FindByID(ctx, questionID); err != nil {
				return err
			}
			answer, err := s.AnswerRepo.WithTx(tx).FindByID(ctx, answerID)
			if err != nil {
				return err
			}
			if answer.QuestionID != questionID {
				return util.ErrAnswerNotInQuestion
			}
			return questions.SetResolution(ctx, questionID, &answerID)
		})
	})
}

func (s *ThreadService) RemoveResolvedAnswer(ctx context.Context, questionID uint) error {
	return s.Exec.Do(ctx, "question.remove_resolved", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			questions := s.QuestionRepo.WithTx(tx)
			if _, err := questions.FindByID(ctx, questionID); err != nil {
				return err
			}
			return questions.SetResolution(ctx, questionID, nil)
		})
	})
}

func (s *ThreadService) GetResolution(ctx context.Context, questionID uint) (Resolution, error) {
	return run(ctx, s.Exec, "question.resolution", func(ctx context.Context) (Resolution, error) {
		q, err := s.QuestionRepo.FindByID(ctx, questionID)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Resolved: q.Resolved, AnswerID: q.ResolvedAnswerID}, nil
	})
}

func (s *ThreadService) DeleteQuestion(ctx context.Context, questionID uint) error {
	return s.Exec.Do(ctx, "question.delete", func(ctx context.Context) error {
		return s.QuestionRepo.Delete(ctx, questionID)
	})
}

func (s *ThreadService) DeleteAnswer(ctx context.Context, answerID uint) error {
	return s.Exec.Do(ctx, "answer.delete", func(ctx context.Context) error {
		return s.AnswerRepo.Delete(ctx, answerID)
	})
}
