// 手动触发课程进度重算脚本
//
// 课程进度平时由模块完成事件驱动重算。此脚本用于手动兜底，
// 例如数据库直接导入模块数据或人工修复记录之后。
//
// 用法: go run scripts/recompute_progress.go

package main

import (
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/internal/repository"
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/pkg/database"
	"indosat_lms_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	enrollRepo := repository.NewEnrollmentRepository(db)
	courses := service.NewCourseService(courseRepo, moduleRepo, enrollRepo, nil, nil)

	published, err := courseRepo.FindPublished()
	if err != nil {
		log.Fatalf("读取课程列表失败: %v", err)
	}

	log.Printf("开始重算 %d 门课程的进度...", len(published))
	for _, course := range published {
		progress, err := courses.RecomputeCourseProgress(course.ID)
		if err != nil {
			log.Printf("课程 %s 重算失败: %v", course.ID, err)
			continue
		}
		log.Printf("课程 %s (%s) 进度: %d%%", course.ID, course.Title, progress)
	}
	log.Println("完成！")
}
