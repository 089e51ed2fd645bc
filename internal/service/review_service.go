package service

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

// ReviewService 评审及学生对评审者的信任关系
type ReviewService struct {
	DB           *gorm.DB
	ReviewRepo   *repository.ReviewRepository
	TrustRepo    *repository.TrustRepository
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	UserRepo     *repository.UserRepository
	Exec         *Executor
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo *repository.ReviewRepository,
	trustRepo *repository.TrustRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	userRepo *repository.UserRepository,
	exec *Executor,
) *ReviewService {
	return &ReviewService{
		DB:           db,
		ReviewRepo:   reviewRepo,
		TrustRepo:    trustRepo,
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		UserRepo:     userRepo,
		Exec:         exec,
	}
}

type ReviewInput struct {
	QuestionID *uint  `json:"questionId"`
	AnswerID   *uint  `json:"answerId"`
	Content    string `json:"content" validate:"required,nonblank,max=65535"`
}

type ListReviewsInput struct {
	Query  string `form:"q"`
	Filter string `form:"filter"`
	Sort   string `form:"sort"`
}

// TargetFromIDs 问题 ID 与回答 ID 必须恰好给出一个
func TargetFromIDs(questionID, answerID *uint) (model.ReviewTarget, error) {
	switch {
	case questionID != nil && answerID == nil && *questionID != 0:
		return model.QuestionTarget(*questionID), nil
	case answerID != nil && questionID == nil && *answerID != 0:
		return model.AnswerTarget(*answerID), nil
	}
	return model.ReviewTarget{}, util.ErrInvalidTarget
}

func (s *ReviewService) targetExists(ctx context.Context, tx *gorm.DB, target model.ReviewTarget) error {
	if target.IsQuestion() {
		_, err := s.QuestionRepo.WithTx(tx).FindByID(ctx, target.ID())
		return err
	}
	_, err := s.AnswerRepo.WithTx(tx).FindByID(ctx, target.ID())
	return err
}

func (s *ReviewService) AddReview(ctx context.Context, authorID uint, in ReviewInput) (*model.Review, error) {
	target, err := TargetFromIDs(in.QuestionID, in.AnswerID)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "review.add", func(ctx context.Context) (*model.Review, error) {
		review := &model.Review{AuthorID: authorID, Content: in.Content}
		target.Apply(review)

		err := repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			exists, err := s.UserRepo.WithTx(tx).Exists(ctx, authorID)
			if err != nil {
				return err
			}
			if !exists {
				return util.ErrUserNotFound
			}
			if err := s.targetExists(ctx, tx, target); err != nil {
				return err
			}
			review.ID = 0
			return s.ReviewRepo.WithTx(tx).Create(ctx, review)
		})
		if err != nil {
			return nil, err
		}
		return review, nil
	})
}

func (s *ReviewService) GetAllReviews(ctx context.Context, target model.ReviewTarget) ([]ReviewLightweightDTO, error) {
	if !target.Valid() {
		return nil, util.ErrInvalidTarget
	}
	return run(ctx, s.Exec, "review.list", func(ctx context.Context) ([]ReviewLightweightDTO, error) {
		reviews, err := s.ReviewRepo.ListByTarget(ctx, target)
		if err != nil {
			return nil, err
		}
		return toReviewDTOs(reviews), nil
	})
}

// GetAllTrustedReviews 只包含学生信任的评审者所写评审，权重高者在前
func (s *ReviewService) GetAllTrustedReviews(ctx context.Context, target model.ReviewTarget, studentID uint) ([]TrustedReviewView, error) {
	if !target.Valid() {
		return nil, util.ErrInvalidTarget
	}
	return run(ctx, s.Exec, "review.list_trusted", func(ctx context.Context) ([]TrustedReviewView, error) {
		reviews, err := s.ReviewRepo.ListTrusted(ctx, target, studentID)
		if err != nil {
			return nil, err
		}
		out := make([]TrustedReviewView, 0, len(reviews))
		for _, r := range reviews {
			out = append(out, TrustedReviewView{ReviewLightweightDTO: toReviewDTO(r.Review), Weight: r.Weight})
		}
		return out, nil
	})
}

func (s *ReviewService) GetReview(ctx context.Context, reviewID uint) (*model.Review, error) {
	return run(ctx, s.Exec, "review.get", func(ctx context.Context) (*model.Review, error) {
		return s.ReviewRepo.FindByID(ctx, reviewID)
	})
}

func (s *ReviewService) UpdateReviewContent(ctx context.Context, reviewID uint, content string) (*model.Review, error) {
	in := AnswerInput{Content: content}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "review.update", func(ctx context.Context) (*model.Review, error) {
		review, err := s.ReviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return nil, err
		}
		if err := s.ReviewRepo.UpdateContent(ctx, reviewID, in.Content); err != nil {
			return nil, err
		}
		review.Content = in.Content
		return review, nil
	})
}

// DeleteReview 不级联，评审下的私信保留
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID uint) error {
	return s.Exec.Do(ctx, "review.delete", func(ctx context.Context) error {
		if _, err := s.ReviewRepo.FindByID(ctx, reviewID); err != nil {
			return err
		}
		return s.ReviewRepo.Delete(ctx, reviewID)
	})
}

// ListUserReviews 作者本人的评审，支持内容关键词、目标类型过滤与排序
func (s *ReviewService) ListUserReviews(ctx context.Context, userID uint, in ListReviewsInput) ([]ReviewLightweightDTO, error) {
	filter, err := ParseReviewFilter(in.Filter)
	if err != nil {
		return nil, err
	}
	order, err := ParseSort(in.Sort)
	if err != nil {
		return nil, err
	}
	keywords, ok := searchTerms(in.Query)
	if !ok {
		return []ReviewLightweightDTO{}, nil
	}

	return run(ctx, s.Exec, "review.list_user", func(ctx context.Context) ([]ReviewLightweightDTO, error) {
		reviews, err := s.ReviewRepo.ListByAuthor(ctx, repository.ReviewQuery{
			AuthorID: userID,
			Keywords: keywords,
			Filter:   filter,
			Sort:     order,
		})
		if err != nil {
			return nil, err
		}
		return toReviewDTOs(reviews), nil
	})
}

func validWeight(weight int) bool {
	return weight >= util.MinTrustWeight && weight <= util.MaxTrustWeight
}

// AddTrustedReviewer 被信任者必须持有 reviewer 角色，且不能信任自己
func (s *ReviewService) AddTrustedReviewer(ctx context.Context, studentID, reviewerID uint, weight int) error {
	if !validWeight(weight) {
		return util.ErrInvalidWeight
	}
	if studentID == reviewerID {
		return util.ErrSelfTrust
	}

	return s.Exec.Do(ctx, "trust.add", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			users := s.UserRepo.WithTx(tx)
			for _, id := range []uint{studentID, reviewerID} {
				exists, err := users.Exists(ctx, id)
				if err != nil {
					return err
				}
				if !exists {
					return util.ErrUserNotFound
				}
			}
			isReviewer, err := users.HasRole(ctx, reviewerID, model.RoleReviewer)
			if err != nil {
				return err
			}
			if !isReviewer {
				return util.ErrNotReviewer
			}
			return s.TrustRepo.WithTx(tx).Create(ctx, &model.TrustedReviewer{
				StudentID:  studentID,
				ReviewerID: reviewerID,
				Weight:     weight,
			})
		})
	})
}

func (s *ReviewService) UpdateTrustedReviewerWeight(ctx context.Context, studentID, reviewerID uint, weight int) error {
	if !validWeight(weight) {
		return util.ErrInvalidWeight
	}
	return s.Exec.Do(ctx, "trust.update", func(ctx context.Context) error {
		return s.TrustRepo.UpdateWeight(ctx, studentID, reviewerID, weight)
	})
}

func (s *ReviewService) DeleteTrustedReviewer(ctx context.Context, studentID, reviewerID uint) error {
	return s.Exec.Do(ctx, "trust.delete", func(ctx context.Context) error {
		return s.TrustRepo.Delete(ctx, studentID, reviewerID)
	})
}

func (s *ReviewService) ListTrustedReviewers(ctx context.Context, studentID uint) ([]model.TrustedReviewer, error) {
	return run(ctx, s.Exec, "trust.list", func(ctx context.Context) ([]model.TrustedReviewer, error) {
		return s.TrustRepo.ListByStudent(ctx, studentID)
	})
}

func (s *ReviewService) StudentTrustsReviewer(ctx context.Context, studentID, reviewerID uint) (bool, error) {
	return run(ctx, s.Exec, "trust.exists", func(ctx context.Context) (bool, error) {
		return s.TrustRepo.Exists(ctx, studentID, reviewerID)
	})
}
