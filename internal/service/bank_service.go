package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"exam_tutor_backend/internal/model"
	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/util"
	"exam_tutor_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const latestVersionCacheKey = "question_bank:latest_version"

// BankService 题库冻结与版本查询。冻结把草稿文件内容固化为一个不可变版本，
// 版本 id 取文件内容 md5 前 8 位，同内容重复冻结幂等返回。
type BankService struct {
	questionRepo *repository.QuestionRepository
	draftRepo    *repository.DraftRepository
	archive      *ArchiveService
	redisClient  *redis.Client
}

func NewBankService(questionRepo *repository.QuestionRepository, draftRepo *repository.DraftRepository, archive *ArchiveService, redisClient *redis.Client) *BankService {
	return &BankService{
		questionRepo: questionRepo,
		draftRepo:    draftRepo,
		archive:      archive,
		redisClient:  redisClient,
	}
}

// FreezeResult 冻结结果；AlreadyExists 表示该内容此前已冻结过
type FreezeResult struct {
	VersionID     string `json:"version_id"`
	Count         int    `json:"count"`
	AlreadyExists bool   `json:"already_exists"`
}

// Freeze 冻结草稿区为新版本：
// 文件缺失 → ErrNotFound；非法 JSON / 过滤后为空 → ErrEmptyQuestionBank。
// 兜底演示题（is_fallback）不会入库。
func (s *BankService) Freeze(ctx context.Context) (*FreezeResult, error) {
	content, err := s.draftRepo.LoadRaw()
	if err != nil {
		return nil, util.ErrNotFound
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(content, &rawItems); err != nil {
		return nil, fmt.Errorf("%w: draft bank is not valid JSON", util.ErrInvalidState)
	}

	drafts := make([]map[string]interface{}, 0, len(rawItems))
	for _, item := range rawItems {
		var obj map[string]interface{}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if fb, ok := obj["is_fallback"].(bool); ok && fb {
			continue
		}
		drafts = append(drafts, obj)
	}
	if len(drafts) == 0 {
		return nil, util.ErrEmptyQuestionBank
	}

	sum := md5.Sum(content)
	versionID := hex.EncodeToString(sum[:])[:8]

	if _, err := s.questionRepo.FindVersion(versionID); err == nil {
		count, _ := s.questionRepo.CountByVersion(versionID)
		return &FreezeResult{VersionID: versionID, Count: int(count), AlreadyExists: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	version := &model.QuestionBankVersion{
		VersionID:   versionID,
		Description: "Imported from draft bank",
	}

	questions := make([]model.Question, 0, len(drafts))
	for _, draft := range drafts {
		fallbackTopic := DefaultTopic
		if t, ok := draft["topic"].(string); ok && strings.TrimSpace(t) != "" {
			fallbackTopic = t
		}
		q := NormalizeDraft(clone(draft), fallbackTopic)

		difficulty := 3
		if d, ok := q["difficulty"].(int); ok && d >= 1 && d <= 5 {
			difficulty = d
		} else if f, ok := q["difficulty"].(float64); ok && int(f) >= 1 && int(f) <= 5 {
			difficulty = int(f)
		}

		optionsJSON, _ := json.Marshal(valueOr(q["options"], []interface{}{}))
		kpJSON, _ := json.Marshal(valueOr(q["knowledge_points"], []interface{}{}))

		questions = append(questions, model.Question{
			DBID:             model.GenerateUUID(),
			OriginalID:       stringOf(q["id"]),
			VersionID:        versionID,
			Stem:             stringOf(q["stem"]),
			Type:             stringOrDefault(q["type"], model.QuestionTypeShortAnswer),
			Options:          optionsJSON,
			CorrectAnswer:    stringOf(q["correct_answer"]),
			Topic:            stringOrDefault(q["topic"], fallbackTopic),
			Difficulty:       difficulty,
			ReferenceOutline: stringOf(q["reference_outline"]),
			IsomorphicGroup:  stringOf(q["isomorphic_group"]),
			KnowledgePoints:  kpJSON,
		})
	}

	if err := s.questionRepo.CreateVersionWithQuestions(version, questions); err != nil {
		return nil, err
	}

	// 快照归档与缓存失效均为尽力而为，不影响冻结结果
	if s.archive != nil {
		if err := s.archive.UploadSnapshot(ctx, versionID, content); err != nil {
			logger.Log.Warn("版本快照归档失败", zap.String("version_id", versionID), zap.Error(err))
		}
	}
	s.invalidateLatestCache(ctx)

	return &FreezeResult{VersionID: versionID, Count: len(questions)}, nil
}

// LatestVersion 返回最新可用版本 id。无版本或版本下无题时尝试自动冻结一次。
// 结果短期缓存在 Redis，冻结时失效。
func (s *BankService) LatestVersion(ctx context.Context) (string, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, latestVersionCacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	v, err := s.questionRepo.LatestVersion()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.freezeForLatest(ctx)
		}
		return "", err
	}

	count, err := s.questionRepo.CountByVersion(v.VersionID)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return s.freezeForLatest(ctx)
	}

	s.cacheLatest(ctx, v.VersionID)
	return v.VersionID, nil
}

func (s *BankService) freezeForLatest(ctx context.Context) (string, error) {
	res, err := s.Freeze(ctx)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", fmt.Errorf("%w: no question bank versions found", util.ErrNotFound)
		}
		// 草稿文件存在但不可冻结（非法 JSON、过滤后为空）时，
		// 原样透传冻结自身的前置条件错误
		return "", err
	}
	s.cacheLatest(ctx, res.VersionID)
	return res.VersionID, nil
}

func (s *BankService) cacheLatest(ctx context.Context, versionID string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Set(ctx, latestVersionCacheKey, versionID, 5*time.Minute).Err(); err != nil {
		logger.Log.Debug("最新版本缓存写入失败", zap.Error(err))
	}
}

func (s *BankService) invalidateLatestCache(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, latestVersionCacheKey).Err(); err != nil {
		logger.Log.Debug("最新版本缓存失效失败", zap.Error(err))
	}
}

func stringOf(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func stringOrDefault(v interface{}, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func valueOr(v, def interface{}) interface{} {
	if v == nil {
		return def
	}
	return v
}
