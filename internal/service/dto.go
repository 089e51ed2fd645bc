package service

import (
	"qa_forum_backend/internal/model"
)

// 列表视图使用的轻量投影，详情视图直接返回 model 记录

type QuestionLightweightDTO struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"authorId"`
	Title    string `json:"title"`
}

type AnswerLightweightDTO struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"authorId"`
	Content  string `json:"content"`
}

type ReviewLightweightDTO struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"authorId"`
	Content  string `json:"content"`
}

type PrivateMessageLightweightDTO struct {
	ID       uint   `json:"id"`
	Content  string `json:"content"`
	IsAuthor bool   `json:"isAuthor"`
	IsRead   bool   `json:"isRead"`
}

type UserLightweightDTO struct {
	ID            uint     `json:"id"`
	UserName      string   `json:"userName"`
	FullName      string   `json:"fullName"`
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
	HasUnreadMsgs bool     `json:"hasUnreadMsgs"`
}

// AnswerView 回答详情，附带票数与是否为已采纳答案
type AnswerView struct {
	model.Answer
	Votes      int    `json:"votes"`
	VotesLabel string `json:"votesLabel"`
	IsResolved bool   `json:"isResolved"`
}

// TrustedReviewView 可信评审及其权重
type TrustedReviewView struct {
	ReviewLightweightDTO
	Weight int `json:"weight"`
}

type Resolution struct {
	Resolved bool  `json:"resolved"`
	AnswerID *uint `json:"answerId"`
}

func toQuestionDTOs(questions []model.Question) []QuestionLightweightDTO {
	out := make([]QuestionLightweightDTO, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuestionLightweightDTO{ID: q.ID, AuthorID: q.AuthorID, Title: q.Title})
	}
	return out
}

func toAnswerDTOs(answers []model.Answer) []AnswerLightweightDTO {
	out := make([]AnswerLightweightDTO, 0, len(answers))
	for _, a := range answers {
		out = append(out, AnswerLightweightDTO{ID: a.ID, AuthorID: a.AuthorID, Content: a.Content})
	}
	return out
}

func toReviewDTO(r model.Review) ReviewLightweightDTO {
	return ReviewLightweightDTO{ID: r.ID, AuthorID: r.AuthorID, Content: r.Content}
}

func toReviewDTOs(reviews []model.Review) []ReviewLightweightDTO {
	out := make([]ReviewLightweightDTO, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewDTO(r))
	}
	return out
}

func toMessageDTOs(messages []model.PrivateMessage) []PrivateMessageLightweightDTO {
	out := make([]PrivateMessageLightweightDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, PrivateMessageLightweightDTO{ID: m.ID, Content: m.Content, IsAuthor: m.IsAuthor, IsRead: m.IsRead})
	}
	return out
}

func toUserDTO(u *model.User) UserLightweightDTO {
	return UserLightweightDTO{
		ID:            u.ID,
		UserName:      u.UserName,
		FullName:      u.FullName,
		Email:         u.Email,
		Roles:         u.RoleNames(),
		HasUnreadMsgs: u.HasUnreadMsgs,
	}
}
