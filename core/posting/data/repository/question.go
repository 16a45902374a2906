package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/data"
)

type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*structs.ScreeningQuestion) error
	ListByPosting(ctx context.Context, postingID string) ([]*structs.ScreeningQuestion, error)
}

type questionRepository struct {
	d *data.Data
}

func NewQuestionRepository(d *data.Data) QuestionRepository {
	return &questionRepository{d: d}
}

func (r *questionRepository) CreateBatch(ctx context.Context, questions []*structs.ScreeningQuestion) error {
	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		encoded, err := json.Marshal(options)
		if err != nil {
			return err
		}
		_, err = r.d.Exec(ctx, `INSERT INTO screening_questions
			(job_posting_id, question_type, question_id, answer_type, prompt, options, requirement, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.JobPostingID, string(q.QuestionType), q.QuestionID, string(q.AnswerType), q.Prompt,
			string(encoded), string(q.Requirement), q.Position,
		)
		if err != nil {
			return fmt.Errorf("insert screening question %s: %w", q.Key(), err)
		}
	}
	return nil
}

func (r *questionRepository) ListByPosting(ctx context.Context, postingID string) ([]*structs.ScreeningQuestion, error) {
	rows, err := r.d.Query(ctx, `SELECT job_posting_id, question_type, question_id, answer_type,
		prompt, options, requirement, position
		FROM screening_questions WHERE job_posting_id = $1
		ORDER BY position`, postingID)
	if err != nil {
		return nil, fmt.Errorf("list screening questions: %w", err)
	}
	defer rows.Close()

	var out []*structs.ScreeningQuestion
	for rows.Next() {
		var (
			q                                  structs.ScreeningQuestion
			qType, aType, options, requirement string
		)
		if err := rows.Scan(&q.JobPostingID, &qType, &q.QuestionID, &aType, &q.Prompt,
			&options, &requirement, &q.Position); err != nil {
			return nil, err
		}
		q.QuestionType = structs.QuestionType(qType)
		q.AnswerType = structs.AnswerType(aType)
		q.Requirement = structs.Requirement(requirement)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options of %s: %w", q.Key(), err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}
