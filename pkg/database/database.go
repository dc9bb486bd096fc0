package database

import (
	"fmt"
	"log"

	"exam_tutor_backend/internal/config"
	"exam_tutor_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 迁移全部业务表。冻结后的题目表只增不改，迁移是幂等的。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Student{},
		&model.QuestionBankVersion{},
		&model.Question{},
		&model.Paper{},
		&model.Submission{},
		&model.SubmissionItem{},
		&model.IsomorphicPractice{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
