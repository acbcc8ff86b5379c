package chatbuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/AjayKumar0077/Resumelit/internal/assistant"
	"github.com/AjayKumar0077/Resumelit/internal/resumes"
	"github.com/AjayKumar0077/Resumelit/internal/shared/telemetry"
)

// maxAnswerRunes bounds a single chat answer.
const maxAnswerRunes = 4000

// RecordCreator is the part of the record store a finished chat is saved to.
type RecordCreator interface {
	Create(ctx context.Context, in resumes.CreateInput) (resumes.Record, error)
}

// Rewriter polishes the finished resume.
type Rewriter interface {
	Rewrite(ctx context.Context, ownerID string, kind assistant.RewriteKind, source string) (assistant.Rewrite, error)
}

// Service walks a caller through name, experience, education and skills and
// turns the answers into a resume record.
type Service struct {
	Records  RecordCreator
	Rewriter Rewriter
}

// NewService constructs a Service. Without a rewriter Improve is ignored.
func NewService(records RecordCreator, rewriter Rewriter) *Service {
	return &Service{Records: records, Rewriter: rewriter}
}

// Chat applies one answer to the conversation and returns the next question.
// An empty message on a fresh conversation returns the greeting.
func (s *Service) Chat(ctx context.Context, ownerID string, in Input) (Reply, error) {
	st := in.State
	if st.Step == "" {
		st.Step = StepName
	}
	msg := strings.TrimSpace(in.Message)

	if msg == "" {
		if st.Step == StepName && st.Name == "" {
			return Reply{State: st, Reply: greeting}, nil
		}
		return Reply{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if n := len([]rune(msg)); n > maxAnswerRunes {
		return Reply{}, fmt.Errorf("%w: message is %d characters, limit is %d", ErrInvalidInput, n, maxAnswerRunes)
	}

	switch st.Step {
	case StepName:
		st.Name = msg
		st.Step = StepExperience
		return Reply{State: st, Reply: askExperience}, nil
	case StepExperience:
		st.Experience = msg
		st.Step = StepEducation
		return Reply{State: st, Reply: askEducation}, nil
	case StepEducation:
		st.Education = msg
		st.Step = StepSkills
		return Reply{State: st, Reply: askSkills}, nil
	case StepSkills:
		st.Skills = msg
		st.Step = StepDone
		return s.finish(ctx, ownerID, st, in)
	case StepDone:
		return Reply{}, fmt.Errorf("%w: conversation is already complete", ErrInvalidInput)
	default:
		return Reply{}, fmt.Errorf("%w: unknown step %q", ErrInvalidInput, st.Step)
	}
}

func (s *Service) finish(ctx context.Context, ownerID string, st State, in Input) (Reply, error) {
	if strings.TrimSpace(st.Name) == "" {
		return Reply{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	doc := buildDocument(st)
	payload, err := doc.Payload()
	if err != nil {
		return Reply{}, err
	}

	degraded := false
	if in.Improve && s.Rewriter != nil {
		out, err := s.Rewriter.Rewrite(ctx, ownerID, assistant.RewriteResume, doc.PlainText())
		if err != nil {
			return Reply{}, err
		}
		if out.Degraded {
			degraded = true
		} else {
			payload = out.Payload
		}
	}

	reply := Reply{State: st, Reply: completed, Complete: true, Payload: payload, Degraded: degraded}
	if in.Save != nil && !*in.Save {
		return reply, nil
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSpace(st.Name) + " Resume"
	}
	rec, err := s.Records.Create(ctx, resumes.CreateInput{
		OwnerID: ownerID,
		Title:   title,
		Method:  resumes.MethodChat,
		Payload: payload,
	})
	if err != nil {
		return Reply{}, err
	}
	resp := resumes.ToResponse(rec)
	reply.Record = &resp
	reply.Reply = completedSaved

	telemetry.Info("chat resume saved", map[string]any{
		"record_id": rec.ID,
		"owner_id":  ownerID,
		"improved":  in.Improve && !degraded,
		"degraded":  degraded,
	})
	return reply, nil
}
