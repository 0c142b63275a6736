package database

import (
	"fmt"
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/internal/model"
	"log"

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

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Module{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizResult{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Enrollment{},
		&model.Certificate{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedBadges(db)

	return db, nil
}

// seedBadges 首次启动写入内置徽章定义，criteria 对应 service 层的授予条件编码
func seedBadges(db *gorm.DB) {
	var count int64
	db.Model(&model.Badge{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Badge{
		{Name: "First Steps", Description: "完成第一门课程", Icon: "🎓", Rarity: model.BadgeCommon, Criteria: "first_course_completed"},
		{Name: "Course Collector", Description: "完成五门课程", Icon: "📚", Rarity: model.BadgeRare, Criteria: "five_courses_completed"},
		{Name: "Quiz Rookie", Description: "首次通过测验", Icon: "✅", Rarity: model.BadgeCommon, Criteria: "first_quiz_passed"},
		{Name: "Quiz Master", Description: "通过十次测验", Icon: "🏆", Rarity: model.BadgeEpic, Criteria: "ten_quizzes_passed"},
		{Name: "Rising Star", Description: "达到五级", Icon: "⭐", Rarity: model.BadgeLegendary, Criteria: "level_five_reached"},
	}
	for _, b := range defaults {
		db.Create(&b)
	}
}
