package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"exam_tutor_backend/internal/model"
	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/util"

	"gorm.io/gorm"
)

// PracticeRequest 同构再练请求，针对某次提交中的一道错题
type PracticeRequest struct {
	StudentID                string `json:"student_id" binding:"required"`
	OriginalSubmissionItemID uint   `json:"original_submission_item_id" binding:"required"`
}

// PracticeResponse 练习会话与变式题
type PracticeResponse struct {
	PracticeID string         `json:"practice_id"`
	Question   QuestionPublic `json:"question"`
}

// PracticeSubmitRequest 练习作答
type PracticeSubmitRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Answer    string `json:"answer"`
}

// PracticeResultResponse 练习判定；答错时不泄露正确答案
type PracticeResultResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback"`
}

// PracticeService 同构再练：从错题的同构组里抽一道变式题重练
type PracticeService struct {
	practiceRepo   *repository.PracticeRepository
	submissionRepo *repository.SubmissionRepository
	questionRepo   *repository.QuestionRepository
}

func NewPracticeService(practiceRepo *repository.PracticeRepository, submissionRepo *repository.SubmissionRepository, questionRepo *repository.QuestionRepository) *PracticeService {
	return &PracticeService{
		practiceRepo:   practiceRepo,
		submissionRepo: submissionRepo,
		questionRepo:   questionRepo,
	}
}

// CreatePractice 仅限错题；原题无同构组或组内无其他题时无法练习
func (s *PracticeService) CreatePractice(req *PracticeRequest) (*PracticeResponse, error) {
	item, err := s.submissionRepo.FindItemByID(req.OriginalSubmissionItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid item for practice", util.ErrInvalidState)
		}
		return nil, err
	}
	if item.IsCorrect {
		return nil, fmt.Errorf("%w: invalid item for practice", util.ErrInvalidState)
	}

	origQ, err := s.questionRepo.FindByDBID(item.QuestionDBID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no isomorphic group found", util.ErrInvalidState)
		}
		return nil, err
	}
	if origQ.IsomorphicGroup == "" {
		return nil, fmt.Errorf("%w: no isomorphic group found", util.ErrInvalidState)
	}

	siblings, err := s.questionRepo.ListGroupSiblings(origQ.VersionID, origQ.IsomorphicGroup, origQ.DBID)
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return nil, fmt.Errorf("%w: no other questions in this group", util.ErrNotFound)
	}

	practiceQ := siblings[rand.Intn(len(siblings))]

	practice := &model.IsomorphicPractice{
		PracticeID:               model.GenerateUUID(),
		OriginalSubmissionItemID: item.ID,
		StudentID:                req.StudentID,
		QuestionDBID:             practiceQ.DBID,
	}
	if err := s.practiceRepo.Create(practice); err != nil {
		return nil, err
	}

	return &PracticeResponse{
		PracticeID: practice.PracticeID,
		Question:   toQuestionPublic(&practiceQ),
	}, nil
}

// SubmitPractice 判定练习作答。正确答案只在答对时回显，答错时以 "Hidden" 掩蔽。
func (s *PracticeService) SubmitPractice(practiceID string, req *PracticeSubmitRequest) (*PracticeResultResponse, error) {
	practice, err := s.practiceRepo.FindByID(practiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	q, err := s.questionRepo.FindByDBID(practice.QuestionDBID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	isCorrect := checkAnswer(q, req.Answer)

	now := time.Now()
	practice.StudentAnswer = req.Answer
	practice.IsCorrect = isCorrect
	practice.SubmittedAt = &now
	if err := s.practiceRepo.Update(practice); err != nil {
		return nil, err
	}

	feedback := "Still incorrect. Keep reviewing."
	correctAnswer := "Hidden"
	if isCorrect {
		feedback = "Great job! You corrected your mistake."
		correctAnswer = q.CorrectAnswer
	}

	return &PracticeResultResponse{
		IsCorrect:     isCorrect,
		CorrectAnswer: correctAnswer,
		Feedback:      feedback,
	}, nil
}
