package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"exam_tutor_backend/internal/model"
	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/util"

	"gorm.io/gorm"
)

// SubmitRequest 整卷提交，answers 以题目实例 id 为键
type SubmitRequest struct {
	StudentID string            `json:"student_id" binding:"required"`
	Answers   map[string]string `json:"answers"`
}

// SubmissionItemResult 单题判定与诊断
type SubmissionItemResult struct {
	ID            uint       `json:"id"`
	QuestionID    string     `json:"question_id"`
	StudentAnswer string     `json:"student_answer"`
	IsCorrect     bool       `json:"is_correct"`
	Score         float64    `json:"score"`
	ErrorAnalysis *Diagnosis `json:"error_analysis,omitempty"`
	CanPractice   bool       `json:"can_practice"`
}

// SubmissionResponse 判卷响应，repeated_errors 为本卷内重复错因提醒
type SubmissionResponse struct {
	SubmissionID   string                 `json:"submission_id"`
	TotalScore     float64                `json:"total_score"`
	TotalQuestions int                    `json:"total_questions"`
	Results        []SubmissionItemResult `json:"results"`
	RepeatedErrors []string               `json:"repeated_errors"`
}

// HintUpgradeRequest 提示升级请求
type HintUpgradeRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	HintLevel int    `json:"hint_level" binding:"required,min=1,max=3"`
}

// GradingService 确定性判卷 + 错题诊断 + 提示升级
type GradingService struct {
	paperRepo      *repository.PaperRepository
	questionRepo   *repository.QuestionRepository
	submissionRepo *repository.SubmissionRepository
	ai             *AIService
}

func NewGradingService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, submissionRepo *repository.SubmissionRepository, ai *AIService) *GradingService {
	return &GradingService{
		paperRepo:      paperRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
		ai:             ai,
	}
}

// checkAnswer 确定性判定：
// 选择题比较去空格后的大写选项 id；简答题先尝试数值比较（容差 1e-6），
// 数值解析失败退回去空格小写的字符串比较。空答案恒为错。
func checkAnswer(q *model.Question, answer string) bool {
	if answer == "" {
		return false
	}
	correct := q.CorrectAnswer

	switch q.Type {
	case model.QuestionTypeMultipleChoice:
		return strings.ToUpper(strings.TrimSpace(answer)) == strings.ToUpper(strings.TrimSpace(correct))
	case model.QuestionTypeShortAnswer:
		sa, errSA := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		ca, errCA := strconv.ParseFloat(strings.TrimSpace(correct), 64)
		if errSA == nil && errCA == nil {
			return math.Abs(sa-ca) < 1e-6
		}
		return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(correct))
	}
	return false
}

// repeatedErrorAlerts 统计本卷错因出现次数，某类第二次出现时恰好产生一条提醒
func repeatedErrorAlerts(errorTypes []string) []string {
	alerts := []string{}
	counts := map[string]int{}
	for _, et := range errorTypes {
		counts[et]++
		if counts[et] == 2 {
			alerts = append(alerts, fmt.Sprintf("Notice: You made a '%s' twice in this test. Review recommended.", et))
		}
	}
	return alerts
}

// Submit 整卷判分。每道错题同步产出一级提示的诊断；
// 诊断链路永不失败（AI 不可用时有本地兜底），判卷结果不受 AI 可用性影响。
func (s *GradingService) Submit(paperID string, req *SubmitRequest) (*SubmissionResponse, error) {
	paper, err := s.paperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	submissionID := model.GenerateUUID()
	totalScore := 0.0
	var items []model.SubmissionItem
	var results []SubmissionItemResult
	var wrongErrorTypes []string

	for _, dbID := range paper.QuestionIDList() {
		q, err := s.questionRepo.FindByDBID(dbID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		studentAnswer := req.Answers[dbID]
		isCorrect := checkAnswer(q, studentAnswer)
		score := 0.0
		if isCorrect {
			score = 1.0
		}
		totalScore += score

		item := model.SubmissionItem{
			SubmissionID:  submissionID,
			QuestionDBID:  dbID,
			StudentAnswer: studentAnswer,
			IsCorrect:     isCorrect,
			Score:         score,
		}

		var analysis *Diagnosis
		if !isCorrect {
			analysis = s.ai.AnalyzeWrongAnswer(q.Stem, q.CorrectAnswer, q.ReferenceOutline, studentAnswer, 1)
			item.ErrorType = analysis.PrimaryErrorType
			item.ExplanationText = analysis.ErrorExplanation
			item.HintLevelRequested = 1
			item.CurrentHint = analysis.Hint
			if raw, err := json.Marshal(analysis); err == nil {
				item.AnalysisJSON = raw
			}
			wrongErrorTypes = append(wrongErrorTypes, analysis.PrimaryErrorType)
		}

		canPractice := false
		if !isCorrect && q.IsomorphicGroup != "" {
			groupCount, err := s.questionRepo.CountGroup(paper.QuestionBankVersion, q.IsomorphicGroup)
			if err != nil {
				return nil, err
			}
			canPractice = groupCount > 1
		}

		items = append(items, item)
		results = append(results, SubmissionItemResult{
			QuestionID:    dbID,
			StudentAnswer: studentAnswer,
			IsCorrect:     isCorrect,
			Score:         score,
			ErrorAnalysis: analysis,
			CanPractice:   canPractice,
		})
	}

	submission := &model.Submission{
		SubmissionID:   submissionID,
		StudentID:      req.StudentID,
		PaperID:        paperID,
		TotalScore:     totalScore,
		TotalQuestions: len(results),
	}
	if err := s.submissionRepo.CreateWithItems(submission, items); err != nil {
		return nil, err
	}
	// 回填落库后生成的自增 id
	for i := range items {
		results[i].ID = items[i].ID
	}

	return &SubmissionResponse{
		SubmissionID:   submissionID,
		TotalScore:     totalScore,
		TotalQuestions: len(results),
		Results:        results,
		RepeatedErrors: repeatedErrorAlerts(wrongErrorTypes),
	}, nil
}

// UpgradeHint 对已判错的题重新诊断并升级提示等级，结果原地覆盖该题记录。
// 只有提交本人可以升级；答对的题没有提示。
func (s *GradingService) UpgradeHint(itemID uint, req *HintUpgradeRequest) (*Diagnosis, error) {
	item, err := s.submissionRepo.FindItemByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if item.IsCorrect {
		return nil, fmt.Errorf("%w: hint is only available for wrong answers", util.ErrInvalidState)
	}

	submission, err := s.submissionRepo.FindByID(item.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if submission.StudentID != req.StudentID {
		return nil, util.ErrInvalidCredentials
	}

	q, err := s.questionRepo.FindByDBID(item.QuestionDBID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	analysis := s.ai.AnalyzeWrongAnswer(q.Stem, q.CorrectAnswer, q.ReferenceOutline, item.StudentAnswer, req.HintLevel)

	item.ErrorType = analysis.PrimaryErrorType
	item.ExplanationText = analysis.ErrorExplanation
	item.HintLevelRequested = req.HintLevel
	item.CurrentHint = analysis.Hint
	if raw, err := json.Marshal(analysis); err == nil {
		item.AnalysisJSON = raw
	}
	if err := s.submissionRepo.UpdateItem(item); err != nil {
		return nil, err
	}

	return analysis, nil
}
