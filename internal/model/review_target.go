package model

// ReviewTarget 评审对象：问题或回答二选一，零值无效
type ReviewTarget struct {
	kind ParentType
	id   uint
}

func QuestionTarget(id uint) ReviewTarget { return ReviewTarget{kind: ParentQuestion, id: id} }

func AnswerTarget(id uint) ReviewTarget { return ReviewTarget{kind: ParentAnswer, id: id} }

func (t ReviewTarget) Valid() bool {
	return (t.kind == ParentQuestion || t.kind == ParentAnswer) && t.id != 0
}

func (t ReviewTarget) Kind() ParentType { return t.kind }

func (t ReviewTarget) ID() uint { return t.id }

func (t ReviewTarget) IsQuestion() bool { return t.kind == ParentQuestion }

// Column 对应 reviews 表中的外键列
func (t ReviewTarget) Column() string {
	if t.kind == ParentQuestion {
		return "question_id"
	}
	return "answer_id"
}

// Apply 将目标写入评审记录的两个可空列
func (t ReviewTarget) Apply(r *Review) {
	id := t.id
	r.QuestionID, r.AnswerID = nil, nil
	if t.kind == ParentQuestion {
		r.QuestionID = &id
	} else {
		r.AnswerID = &id
	}
}

// TargetOf 从存储记录还原评审对象
func TargetOf(r *Review) ReviewTarget {
	if r.QuestionID != nil {
		return QuestionTarget(*r.QuestionID)
	}
	if r.AnswerID != nil {
		return AnswerTarget(*r.AnswerID)
	}
	return ReviewTarget{}
}
