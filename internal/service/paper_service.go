package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"time"

	"exam_tutor_backend/internal/model"
	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/util"

	"gorm.io/gorm"
)

// QuestionPublic 对学生暴露的题目视图，永远不含正确答案
type QuestionPublic struct {
	ID               string                 `json:"id"`
	OriginalID       string                 `json:"original_id"`
	Stem             string                 `json:"stem"`
	Type             string                 `json:"type"`
	Options          []model.QuestionOption `json:"options"`
	Topic            string                 `json:"topic"`
	Difficulty       int                    `json:"difficulty"`
	ReferenceOutline string                 `json:"reference_outline"`
	IsomorphicGroup  string                 `json:"isomorphic_group"`
	KnowledgePoints  []string               `json:"knowledge_points"`
}

func toQuestionPublic(q *model.Question) QuestionPublic {
	return QuestionPublic{
		ID:               q.DBID,
		OriginalID:       q.OriginalID,
		Stem:             q.Stem,
		Type:             q.Type,
		Options:          q.OptionList(),
		Topic:            q.Topic,
		Difficulty:       q.Difficulty,
		ReferenceOutline: q.ReferenceOutline,
		IsomorphicGroup:  q.IsomorphicGroup,
		KnowledgePoints:  q.KnowledgePointList(),
	}
}

// PaperCreateRequest 组卷请求
type PaperCreateRequest struct {
	StudentID        string   `json:"student_id" binding:"required"`
	Mode             string   `json:"mode" binding:"required,oneof=fixed equivalent"`
	FixedQuestionIDs []string `json:"fixed_question_ids"`
	Topic            string   `json:"topic"`
	Difficulty       int      `json:"difficulty"`
	Count            int      `json:"count"`
	Seed             *int64   `json:"seed"`
}

// PaperResponse 组卷/查卷响应
type PaperResponse struct {
	PaperID             string           `json:"paper_id"`
	QuestionBankVersion string           `json:"question_bank_version"`
	Questions           []QuestionPublic `json:"questions"`
}

// PaperService 组卷：固定卷按指定题目列表，同构卷按种子从各同构组抽样
type PaperService struct {
	paperRepo    *repository.PaperRepository
	questionRepo *repository.QuestionRepository
	studentRepo  *repository.StudentRepository
	bank         *BankService
}

func NewPaperService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, studentRepo *repository.StudentRepository, bank *BankService) *PaperService {
	return &PaperService{
		paperRepo:    paperRepo,
		questionRepo: questionRepo,
		studentRepo:  studentRepo,
		bank:         bank,
	}
}

// selectEquivalent 同构组抽样：每组至多一题，同种子同候选集必得同结果。
// 组 key 与组内成员都先按固定序排好再消费随机数，
// 保证结果只受种子影响，不受数据库返回顺序影响。
func selectEquivalent(candidates []model.Question, count int, seed *int64) []model.Question {
	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	groups := map[string][]model.Question{}
	for _, q := range candidates {
		g := q.IsomorphicGroup
		if g == "" {
			g = "ungrouped_" + q.OriginalID
		}
		groups[g] = append(groups[g], q)
	}

	keys := make([]string, 0, len(groups))
	for k, members := range groups {
		sort.Slice(members, func(i, j int) bool {
			return members[i].OriginalID < members[j].OriginalID
		})
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	if count > len(keys) {
		count = len(keys)
	}
	selected := make([]model.Question, 0, count)
	for _, g := range keys[:count] {
		members := groups[g]
		selected = append(selected, members[rng.Intn(len(members))])
	}
	return selected
}

// CreatePaper 组卷并落库；无可选题时返回 ErrNoQuestionsAvailable
func (s *PaperService) CreatePaper(ctx context.Context, req *PaperCreateRequest) (*PaperResponse, error) {
	if err := s.studentRepo.EnsureExists(req.StudentID); err != nil {
		return nil, err
	}

	versionID, err := s.bank.LatestVersion(ctx)
	if err != nil {
		return nil, err
	}

	var selected []model.Question
	switch req.Mode {
	case model.PaperModeFixed:
		if len(req.FixedQuestionIDs) > 0 {
			for _, origID := range req.FixedQuestionIDs {
				q, err := s.questionRepo.FindByVersionAndOriginalID(versionID, origID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						// 指定题目在该版本不存在时跳过
						continue
					}
					return nil, err
				}
				selected = append(selected, *q)
			}
		} else {
			selected, err = s.questionRepo.ListByVersion(versionID, "", 0)
			if err != nil {
				return nil, err
			}
		}
	case model.PaperModeEquivalent:
		candidates, err := s.questionRepo.ListByVersion(versionID, req.Topic, req.Difficulty)
		if err != nil {
			return nil, err
		}
		count := req.Count
		if count <= 0 {
			count = 5
		}
		selected = selectEquivalent(candidates, count, req.Seed)
	}

	if len(selected) == 0 {
		return nil, util.ErrNoQuestionsAvailable
	}

	dbIDs := make([]string, 0, len(selected))
	for _, q := range selected {
		dbIDs = append(dbIDs, q.DBID)
	}
	idsJSON, err := json.Marshal(dbIDs)
	if err != nil {
		return nil, err
	}

	// params_json 记录请求参数（去掉 student_id），用于复现组卷条件
	params := map[string]interface{}{
		"mode":               req.Mode,
		"fixed_question_ids": req.FixedQuestionIDs,
		"topic":              req.Topic,
		"difficulty":         req.Difficulty,
		"count":              req.Count,
		"seed":               req.Seed,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	paper := &model.Paper{
		PaperID:             model.GenerateUUID(),
		StudentID:           req.StudentID,
		QuestionBankVersion: versionID,
		GenerationPolicy:    req.Mode,
		RandomSeed:          req.Seed,
		ParamsJSON:          paramsJSON,
		QuestionIDs:         idsJSON,
	}
	if err := s.paperRepo.Create(paper); err != nil {
		return nil, err
	}

	questions := make([]QuestionPublic, 0, len(selected))
	for i := range selected {
		questions = append(questions, toQuestionPublic(&selected[i]))
	}
	return &PaperResponse{
		PaperID:             paper.PaperID,
		QuestionBankVersion: versionID,
		Questions:           questions,
	}, nil
}

// GetPaper 按存储顺序重建题目列表；已被删除的题目实例静默跳过
func (s *PaperService) GetPaper(paperID string) (*PaperResponse, error) {
	paper, err := s.paperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	questions := make([]QuestionPublic, 0)
	for _, dbID := range paper.QuestionIDList() {
		q, err := s.questionRepo.FindByDBID(dbID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		questions = append(questions, toQuestionPublic(q))
	}

	return &PaperResponse{
		PaperID:             paper.PaperID,
		QuestionBankVersion: paper.QuestionBankVersion,
		Questions:           questions,
	}, nil
}
