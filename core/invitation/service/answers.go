package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ncobase/recruit/core/invitation/structs"
	posting "github.com/ncobase/recruit/core/posting/structs"
	"github.com/ncobase/recruit/ecode"
)

const maxTextAnswer = 10000

// checkResponses validates a submission against the question set and
// returns the rows to store. Problems are reported per question key.
func checkResponses(set *posting.QuestionSet, inputs []*structs.ResponseInput, now time.Time) ([]*structs.ScreeningResponse, error) {
	problems := map[string]string{}
	seen := map[posting.QuestionKey]bool{}
	out := make([]*structs.ScreeningResponse, 0, len(inputs))

	for i, in := range inputs {
		if in == nil {
			problems[fmt.Sprintf("responses[%d]", i)] = "response is required"
			continue
		}
		key := in.Key()
		field := key.String()
		if seen[key] {
			problems[field] = "duplicate answer"
			continue
		}
		seen[key] = true

		q, ok := set.Lookup(key)
		if !ok {
			problems[field] = "unknown question"
			continue
		}
		if q.Requirement == posting.RequirementHidden {
			problems[field] = "question is not asked"
			continue
		}
		if in.Answer.Type != q.AnswerType {
			problems[field] = fmt.Sprintf("answer type %q does not match %s", in.Answer.Type, q.AnswerType)
			continue
		}
		if msg := checkAnswer(q, &in.Answer); msg != "" {
			problems[field] = msg
			continue
		}
		if q.Requirement == posting.RequirementRequired && isBlank(&in.Answer) {
			problems[field] = "answer is required"
			continue
		}
		out = append(out, &structs.ScreeningResponse{
			QuestionType: q.QuestionType,
			QuestionID:   q.QuestionID,
			AnswerType:   q.AnswerType,
			Answer:       normalize(in.Answer),
			CreatedAt:    now,
		})
	}

	for _, q := range set.Questions {
		if q.Requirement == posting.RequirementRequired && !seen[q.Key()] {
			problems[q.Key().String()] = "answer is required"
		}
	}

	if len(problems) > 0 {
		return nil, ecode.Validationf("invalid screening responses").WithData(problems)
	}
	return out, nil
}

// checkAnswer verifies that the field selected by the answer type is set
// and holds an acceptable value.
func checkAnswer(q *posting.ScreeningQuestion, a *structs.Answer) string {
	switch q.AnswerType {
	case posting.AnswerText:
		if a.Text == nil {
			return "text answer is missing"
		}
		if len(*a.Text) > maxTextAnswer {
			return fmt.Sprintf("text answer exceeds %d characters", maxTextAnswer)
		}
	case posting.AnswerNumber:
		if a.Number == nil {
			return "number answer is missing"
		}
		if math.IsNaN(*a.Number) || math.IsInf(*a.Number, 0) {
			return "number answer is not finite"
		}
	case posting.AnswerBoolean:
		if a.Bool == nil {
			return "boolean answer is missing"
		}
	case posting.AnswerSingleChoice:
		if len(a.Choices) != 1 {
			return "exactly one choice is required"
		}
		return checkChoices(q.Options, a.Choices)
	case posting.AnswerMultiChoice:
		return checkChoices(q.Options, a.Choices)
	default:
		return fmt.Sprintf("unsupported answer type %s", q.AnswerType)
	}
	return ""
}

func checkChoices(options, choices []string) string {
	allowed := make(map[string]bool, len(options))
	for _, o := range options {
		allowed[o] = true
	}
	picked := make(map[string]bool, len(choices))
	for _, c := range choices {
		if !allowed[c] {
			return fmt.Sprintf("%q is not an option", c)
		}
		if picked[c] {
			return fmt.Sprintf("%q is chosen twice", c)
		}
		picked[c] = true
	}
	return ""
}

func isBlank(a *structs.Answer) bool {
	switch a.Type {
	case posting.AnswerText:
		return a.Text == nil || strings.TrimSpace(*a.Text) == ""
	case posting.AnswerMultiChoice, posting.AnswerSingleChoice:
		return len(a.Choices) == 0
	}
	return false
}

// normalize keeps only the field selected by the answer type, plus Extra.
func normalize(a structs.Answer) structs.Answer {
	out := structs.Answer{Type: a.Type, Extra: a.Extra}
	switch a.Type {
	case posting.AnswerText:
		out.Text = a.Text
	case posting.AnswerNumber:
		out.Number = a.Number
	case posting.AnswerBoolean:
		out.Bool = a.Bool
	case posting.AnswerSingleChoice, posting.AnswerMultiChoice:
		out.Choices = a.Choices
	}
	return out
}
