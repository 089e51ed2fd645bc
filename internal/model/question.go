package model

import (
	"time"
)

// swagger:model Question
type Question struct {
	BaseModel
	AuthorID          uint   `gorm:"index;not null" json:"authorId"`
	Title             string `gorm:"size:255;not null" json:"title"`
	Description       string `gorm:"type:text;not null" json:"description"`
	ParentQuestionID  *uint  `gorm:"index" json:"parentQuestionId"`
	AuthorUnreadCount int    `gorm:"not null;default:0" json:"authorUnreadCount"`
	Resolved          bool   `gorm:"not null;default:false" json:"resolved"`
	ResolvedAnswerID  *uint  `gorm:"index" json:"resolvedAnswerId"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Answer
type Answer struct {
	BaseModel
	AuthorID   uint   `gorm:"index;not null" json:"authorId"`
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Content    string `gorm:"type:text;not null" json:"content"`
}

func (Answer) TableName() string {
	return "answers"
}

// Vote 每个 (用户, 回答) 至多一行，VoteType 为 0 表示显式的“未投票”
type Vote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	AnswerID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"answerId"`
	VoteType  int       `gorm:"not null" json:"voteType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Vote) TableName() string {
	return "votes"
}

// Review 只能指向问题或回答之一
type Review struct {
	BaseModel
	AuthorID   uint   `gorm:"index;not null" json:"authorId"`
	QuestionID *uint  `gorm:"index" json:"questionId"`
	AnswerID   *uint  `gorm:"index" json:"answerId"`
	Content    string `gorm:"type:text;not null" json:"content"`
}

func (Review) TableName() string {
	return "reviews"
}

type TrustedReviewer struct {
	StudentID  uint      `gorm:"primaryKey;autoIncrement:false" json:"studentId"`
	ReviewerID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"reviewerId"`
	Weight     int       `gorm:"not null" json:"weight"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (TrustedReviewer) TableName() string {
	return "trusted_reviewers"
}
