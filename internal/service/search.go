package service

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"strings"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "is": {}, "of": {}, "to": {}, "in": {}, "that": {}, "it": {}, "for": {},
}

// Keywords 小写并按空白切分，去掉停用词
func Keywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// searchTerms 空查询表示不按关键词过滤；非空但全是停用词时 ok 为 false，结果应为空
func searchTerms(query string) (keywords []string, ok bool) {
	if strings.TrimSpace(query) == "" {
		return nil, true
	}
	keywords = Keywords(query)
	return keywords, len(keywords) > 0
}

var questionFilters = map[string]repository.QuestionFilter{
	"":                repository.QuestionsAll,
	"all":             repository.QuestionsAll,
	"unresolved":      repository.QuestionsUnresolved,
	"resolved":        repository.QuestionsResolved,
	"mine":            repository.QuestionsMine,
	"mine_unresolved": repository.QuestionsMineUnresolved,
	"mine_resolved":   repository.QuestionsMineResolved,
}

var reviewFilters = map[string]repository.ReviewFilter{
	"":          repository.ReviewsAll,
	"all":       repository.ReviewsAll,
	"questions": repository.ReviewsOnQuestions,
	"answers":   repository.ReviewsOnAnswers,
}

var sortOrders = map[string]repository.SortOrder{
	"":       repository.SortRecent,
	"recent": repository.SortRecent,
	"oldest": repository.SortOldest,
	"az":     repository.SortAlphaAsc,
	"za":     repository.SortAlphaDesc,
}

func ParseQuestionFilter(s string) (repository.QuestionFilter, error) {
	if f, ok := questionFilters[strings.ToLower(s)]; ok {
		return f, nil
	}
	return 0, util.Invalid("unknown question filter: " + s)
}

func ParseReviewFilter(s string) (repository.ReviewFilter, error) {
	if f, ok := reviewFilters[strings.ToLower(s)]; ok {
		return f, nil
	}
	return 0, util.Invalid("unknown review filter: " + s)
}

func ParseSort(s string) (repository.SortOrder, error) {
	if o, ok := sortOrders[strings.ToLower(s)]; ok {
		return o, nil
	}
	return 0, util.Invalid("unknown sort: " + s)
}

func ParseRoles(names []string) ([]model.Role, error) {
	roles := make([]model.Role, 0, len(names))
	seen := make(map[model.Role]bool, len(names))
	for _, name := range names {
		role, ok := model.ParseRole(strings.TrimSpace(strings.ToLower(name)))
		if !ok {
			return nil, util.Invalid("unknown role: " + name)
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles, nil
}
