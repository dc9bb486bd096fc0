package repository

import (
	"exam_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// CreateVersionWithQuestions 在单个事务中写入版本记录与全部题目实例
func (r *QuestionRepository) CreateVersionWithQuestions(version *model.QuestionBankVersion, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.CreateInBatches(questions, 200).Error
	})
}

func (r *QuestionRepository) FindVersion(versionID string) (*model.QuestionBankVersion, error) {
	var v model.QuestionBankVersion
	if err := r.DB.Where("version_id = ?", versionID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// LatestVersion 返回最近创建的版本，无版本时返回 gorm.ErrRecordNotFound
func (r *QuestionRepository) LatestVersion() (*model.QuestionBankVersion, error) {
	var v model.QuestionBankVersion
	if err := r.DB.Order("created_at DESC").First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *QuestionRepository) CountByVersion(versionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("version_id = ?", versionID).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) FindByVersionAndOriginalID(versionID, originalID string) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Where("version_id = ? AND original_id = ?", versionID, originalID).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// CountGroup 同版本同构组内的题目总数
func (r *QuestionRepository) CountGroup(versionID, group string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("version_id = ? AND isomorphic_group = ?", versionID, group).
		Count(&count).Error
	return count, err
}

func (r *QuestionRepository) FindByDBID(dbID string) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Where("db_id = ?", dbID).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindByDBIDs(dbIDs []string) ([]model.Question, error) {
	var qs []model.Question
	if len(dbIDs) == 0 {
		return qs, nil
	}
	err := r.DB.Where("db_id IN ?", dbIDs).Find(&qs).Error
	return qs, err
}

// ListByVersion 按版本列出题目，可选按知识点与难度过滤。
// 固定按 original_id 排序，返回顺序不依赖存储引擎的行序。
func (r *QuestionRepository) ListByVersion(versionID string, topic string, difficulty int) ([]model.Question, error) {
	query := r.DB.Where("version_id = ?", versionID)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if difficulty > 0 {
		query = query.Where("difficulty = ?", difficulty)
	}
	var qs []model.Question
	err := query.Order("original_id").Find(&qs).Error
	return qs, err
}

// ListGroupSiblings 同版本同构组内除指定题外的其余题目
func (r *QuestionRepository) ListGroupSiblings(versionID, group, excludeDBID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("version_id = ? AND isomorphic_group = ? AND db_id <> ?", versionID, group, excludeDBID).
		Find(&qs).Error
	return qs, err
}
