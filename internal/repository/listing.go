package repository

import (
	"qa_forum_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type QuestionFilter int

const (
	QuestionsAll QuestionFilter = iota
	QuestionsUnresolved
	QuestionsResolved
	QuestionsMine
	QuestionsMineUnresolved
	QuestionsMineResolved
)

type ReviewFilter int

const (
	ReviewsAll ReviewFilter = iota
	ReviewsOnQuestions
	ReviewsOnAnswers
)

// SortOrder 排序方式，字典序作用于可搜索字段
type SortOrder int

const (
	SortRecent SortOrder = iota
	SortOldest
	SortAlphaAsc
	SortAlphaDesc
)

type QuestionQuery struct {
	Keywords []string
	Filter   QuestionFilter
	Sort     SortOrder
	UserID   uint
	Limit    int
	Offset   int
}

type ReviewQuery struct {
	AuthorID uint
	Keywords []string
	Filter   ReviewFilter
	Sort     SortOrder
}

type RoleRequestQuery struct {
	Roles []model.Role
	Sort  SortOrder
}

// likeEscaper 转义 LIKE 通配符，配合 ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// matchAny 生成 “字段包含任一关键词” 条件，关键词之间为 OR
func matchAny(db *gorm.DB, column string, keywords []string) *gorm.DB {
	if len(keywords) == 0 {
		return db
	}
	cond := db.Session(&gorm.Session{NewDB: true})
	for i, kw := range keywords {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(kw)) + "%"
		expr := "LOWER(" + column + ") LIKE ? ESCAPE '!'"
		if i == 0 {
			cond = cond.Where(expr, pattern)
		} else {
			cond = cond.Or(expr, pattern)
		}
	}
	return db.Where(cond)
}

// orderBy column 只能来自本包内的常量
func orderBy(db *gorm.DB, sort SortOrder, idColumn, textColumn string) *gorm.DB {
	switch sort {
	case SortOldest:
		return db.Order(idColumn + " ASC")
	case SortAlphaAsc:
		return db.Order(textColumn + " ASC").Order(idColumn + " ASC")
	case SortAlphaDesc:
		return db.Order(textColumn + " DESC").Order(idColumn + " DESC")
	default:
		return db.Order(idColumn + " DESC")
	}
}

func applyQuestionFilter(db *gorm.DB, filter QuestionFilter, userID uint) *gorm.DB {
	switch filter {
	case QuestionsUnresolved:
		return db.Where("resolved = ?", false)
	case QuestionsResolved:
		return db.Where("resolved = ?", true)
	case QuestionsMine:
		return db.Where("author_id = ?", userID)
	case QuestionsMineUnresolved:
		return db.Where("author_id = ? AND resolved = ?", userID, false)
	case QuestionsMineResolved:
		return db.Where("author_id = ? AND resolved = ?", userID, true)
	default:
		return db
	}
}

func applyReviewFilter(db *gorm.DB, filter ReviewFilter) *gorm.DB {
	switch filter {
	case ReviewsOnQuestions:
		return db.Where("question_id IS NOT NULL")
	case ReviewsOnAnswers:
		return db.Where("answer_id IS NOT NULL")
	default:
		return db
	}
}

func paginate(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}
