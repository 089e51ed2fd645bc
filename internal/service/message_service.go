package service

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

// MessageService 作者与评论者之间围绕某个问题、回答或评审的私信
type MessageService struct {
	DB           *gorm.DB
	MessageRepo  *repository.MessageRepository
	UserRepo     *repository.UserRepository
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	ReviewRepo   *repository.ReviewRepository
	Exec         *Executor
}

func NewMessageService(
	db *gorm.DB,
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	reviewRepo *repository.ReviewRepository,
	exec *Executor,
) *MessageService {
	return &MessageService{
		DB:           db,
		MessageRepo:  messageRepo,
		UserRepo:     userRepo,
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		ReviewRepo:   reviewRepo,
		Exec:         exec,
	}
}

// MessageInput FromAuthor 为 true 表示由被评论对象的所有者发出
type MessageInput struct {
	Thread     repository.ThreadKey
	FromAuthor bool
	Content    string `validate:"required,nonblank,max=65535"`
}

func validThread(key repository.ThreadKey) bool {
	return key.AuthorID != 0 &&
		key.CommenterID != 0 &&
		key.AuthorID != key.CommenterID &&
		key.ParentID != 0 &&
		key.ParentType.Valid()
}

// parentOwner 返回被评论对象的作者
func (s *MessageService) parentOwner(ctx context.Context, tx *gorm.DB, parentType model.ParentType, parentID uint) (uint, error) {
	switch parentType {
	case model.ParentQuestion:
		q, err := s.QuestionRepo.WithTx(tx).FindByID(ctx, parentID)
		if err != nil {
			return 0, err
		}
		return q.AuthorID, nil
	case model.ParentAnswer:
		a, err := s.AnswerRepo.WithTx(tx).FindByID(ctx, parentID)
		if err != nil {
			return 0, err
		}
		return a.AuthorID, nil
	case model.ParentReview:
		r, err := s.ReviewRepo.WithTx(tx).FindByID(ctx, parentID)
		if err != nil {
			return 0, err
		}
		return r.AuthorID, nil
	}
	return 0, util.ErrInvalidThread
}

// AddPrivateMessage 写入消息并标记接收方有未读私信
func (s *MessageService) AddPrivateMessage(ctx context.Context, in MessageInput) (*model.PrivateMessage, error) {
	if !validThread(in.Thread) {
		return nil, util.ErrInvalidThread
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return run(ctx, s.Exec, "message.add", func(ctx context.Context) (*model.PrivateMessage, error) {
		msg := &model.PrivateMessage{
			AuthorID:    in.Thread.AuthorID,
			CommenterID: in.Thread.CommenterID,
			ParentType:  in.Thread.ParentType,
			ParentID:    in.Thread.ParentID,
			IsAuthor:    in.FromAuthor,
			Content:     in.Content,
		}
		recipient := in.Thread.AuthorID
		if in.FromAuthor {
			recipient = in.Thread.CommenterID
		}

		err := repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			owner, err := s.parentOwner(ctx, tx, in.Thread.ParentType, in.Thread.ParentID)
			if err != nil {
				return err
			}
			if owner != in.Thread.AuthorID {
				return util.ErrInvalidThread
			}
			users := s.UserRepo.WithTx(tx)
			exists, err := users.Exists(ctx, in.Thread.CommenterID)
			if err != nil {
				return err
			}
			if !exists {
				return util.ErrUserNotFound
			}

			msg.ID = 0
			if err := s.MessageRepo.WithTx(tx).Create(ctx, msg); err != nil {
				return err
			}
			return users.SetUnreadMessages(ctx, recipient, true)
		})
		if err != nil {
			return nil, err
		}
		return msg, nil
	})
}

func (s *MessageService) GetAllPrivateMessages(ctx context.Context, thread repository.ThreadKey) ([]PrivateMessageLightweightDTO, error) {
	if !validThread(thread) {
		return nil, util.ErrInvalidThread
	}
	return run(ctx, s.Exec, "message.list", func(ctx context.Context) ([]PrivateMessageLightweightDTO, error) {
		messages, err := s.MessageRepo.ListThread(ctx, thread)
		if err != nil {
			return nil, err
		}
		return toMessageDTOs(messages), nil
	})
}

// GetAllMessages 返回就该对象给作者发过私信的用户
func (s *MessageService) GetAllMessages(ctx context.Context, authorID uint, parentType model.ParentType, parentID uint) ([]uint, error) {
	if !parentType.Valid() {
		return nil, util.ErrInvalidThread
	}
	return run(ctx, s.Exec, "message.commenters", func(ctx context.Context) ([]uint, error) {
		ids, err := s.MessageRepo.ListCommenters(ctx, authorID, parentType, parentID)
		if ids == nil {
			ids = []uint{}
		}
		return ids, err
	})
}

// MarkThreadRead 标记对方消息为已读，并按剩余未读消息重新计算读者的未读标记
func (s *MessageService) MarkThreadRead(ctx context.Context, thread repository.ThreadKey, readerIsAuthor bool) error {
	if !validThread(thread) {
		return util.ErrInvalidThread
	}
	reader := thread.CommenterID
	if readerIsAuthor {
		reader = thread.AuthorID
	}

	return s.Exec.Do(ctx, "message.mark_read", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			messages := s.MessageRepo.WithTx(tx)
			if err := messages.MarkRead(ctx, thread, readerIsAuthor); err != nil {
				return err
			}
			unread, err := messages.HasUnread(ctx, reader)
			if err != nil {
				return err
			}
			return s.UserRepo.WithTx(tx).SetUnreadMessages(ctx, reader, unread)
		})
	})
}

func (s *MessageService) ListThreads(ctx context.Context, userID uint) ([]repository.ThreadKey, error) {
	return run(ctx, s.Exec, "message.threads", func(ctx context.Context) ([]repository.ThreadKey, error) {
		return s.MessageRepo.ListThreadsForUser(ctx, userID)
	})
}
