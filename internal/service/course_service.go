package service

import (
	"context"
	"fmt"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"indosat_lms_backend/pkg/logger"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseStore / ModuleStore 课程与模块的持久化入口
type CourseStore interface {
	Create(course *model.Course) error
	FindByID(id string) (*model.Course, error)
	FindByCreator(userID string) ([]model.Course, error)
	FindPublished() ([]model.Course, error)
	Update(course *model.Course) error
	UpdateStatus(id string, status model.CourseStatus) error
	UpdateProgress(id string, progress int, completed bool) error
}

type ModuleStore interface {
	Create(module *model.Module) error
	FindByID(id string) (*model.Module, error)
	FindByCourse(courseID string) ([]model.Module, error)
	SetCompleted(id string, completed bool) error
	CountByCourse(courseID string) (int64, error)
	CountCompletedByCourse(courseID string) (int64, error)
}

// EnrollmentStore 学员选课记录
type EnrollmentStore interface {
	GetOrCreate(userID, courseID string) (*model.Enrollment, error)
	UpdateProgress(id string, progress int) error
	FindByUser(userID string) ([]model.Enrollment, error)
	CountByCourse(courseID string) (int64, error)
}

// VideoUploader 视频托管上传（可恢复上传协议），返回可播放的规范 URL
type VideoUploader interface {
	UploadVideo(ctx context.Context, localPath, accessToken, title, description string) (string, error)
}

// DocUploader 文档托管上传，返回可分享链接
type DocUploader interface {
	UploadDocument(ctx context.Context, localPath, accessToken, filename, mimeType string) (string, error)
}

// VideoProber 探测本地视频时长，用于填充模块 duration_minutes
type VideoProber func(path string) (*util.VideoInfo, error)

// ModuleInput 新增模块的表单数据；VideoPath/DocPath 为已缓存的本地文件
type ModuleInput struct {
	Title       string
	ContentText string
	Order       int
	XPAmount    int
	VideoPath   string
	DocPath     string
	DocName     string
	DocMime     string
}

// CourseService 课程创作工作流：建课、顺序化上传外部附件后增模块、发布，
// 以及模块完成驱动的课程进度重算。
type CourseService struct {
	CourseRepo CourseStore
	ModuleRepo ModuleStore
	EnrollRepo EnrollmentStore
	Video      VideoUploader
	Doc        DocUploader
	Probe      VideoProber

	// OnCourseCompleted 课程进度抵达100%时回调（签发证书、颁发徽章）
	OnCourseCompleted func(userID, courseID string)
}

func NewCourseService(courseRepo CourseStore, moduleRepo ModuleStore, enrollRepo EnrollmentStore, video VideoUploader, doc DocUploader) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		ModuleRepo: moduleRepo,
		EnrollRepo: enrollRepo,
		Video:      video,
		Doc:        doc,
		Probe:      util.GetVideoInfo,
	}
}

// Enroll 选课，重复选课返回已有记录
func (s *CourseService) Enroll(userID, courseID string) (*model.Enrollment, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != model.CoursePublished {
		return nil, util.ErrCourseNotFound
	}

	enrollment, err := s.EnrollRepo.GetOrCreate(userID, courseID)
	if err != nil {
		return nil, err
	}

	// 报名人数尽力而为地同步到课程聚合字段
	if count, countErr := s.EnrollRepo.CountByCourse(courseID); countErr == nil {
		course.Enrolled = int(count)
		if updateErr := s.CourseRepo.Update(course); updateErr != nil {
			logger.Log.Warn("enrolled count update failed",
				zap.String("course", courseID), zap.Error(updateErr))
		}
	}
	return enrollment, nil
}

func (s *CourseService) GetEnrollments(userID string) ([]model.Enrollment, error) {
	return s.EnrollRepo.FindByUser(userID)
}

func (s *CourseService) CreateCourse(creator *model.User, title, description, category string) (*model.Course, error) {
	course := &model.Course{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      model.CourseDraft,
		CreatedBy:   creator.ID,
		TrainerName: creator.Name,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetMyCourses(userID string) ([]model.Course, error) {
	return s.CourseRepo.FindByCreator(userID)
}

func (s *CourseService) GetPublishedCourses() ([]model.Course, error) {
	return s.CourseRepo.FindPublished()
}

func (s *CourseService) GetCourse(id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetModules(courseID string) ([]model.Module, error) {
	return s.ModuleRepo.FindByCourse(courseID)
}

// AddModule 新增模块，仅限课程创建者。附件上传严格顺序化：
//  1. 选了视频或文档但没有 Google 凭证 → 立刻失败，不发起任何上传
//  2. 视频先传（初始化会话 → PUT 字节 → 规范播放地址），失败则整体中止
//  3. 文档后传（与视频共用同一限流凭证，只能串行）
//  4. 全部上传成功后才落库模块记录
//
// 第4步之前没有任何持久化，因此任一步失败都无需补偿删除。
func (s *CourseService) AddModule(ctx context.Context, courseID, userID, accessToken string, input ModuleInput) (*model.Module, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatedBy != userID {
		return nil, util.ErrPermissionDenied
	}

	if (input.VideoPath != "" || input.DocPath != "") && accessToken == "" {
		return nil, util.ErrGoogleAuthRequired
	}

	var videoURL, docURL string
	durationMinutes := 0

	if input.VideoPath != "" {
		videoTitle := fmt.Sprintf("%s - %s", course.Title, input.Title)
		videoURL, err = s.Video.UploadVideo(ctx, input.VideoPath, accessToken, videoTitle, input.ContentText)
		if err != nil {
			// 上传失败原样上抛，禁止落一条缺视频引用的模块
			return nil, err
		}

		if s.Probe != nil {
			if info, probeErr := s.Probe(input.VideoPath); probeErr == nil {
				durationMinutes = int(math.Round(info.Duration / 60))
			} else {
				logger.Log.Warn("video duration probe failed",
					zap.String("course", courseID), zap.Error(probeErr))
			}
		}
	}

	if input.DocPath != "" {
		docURL, err = s.Doc.UploadDocument(ctx, input.DocPath, accessToken, input.DocName, input.DocMime)
		if err != nil {
			return nil, err
		}
	}

	module := &model.Module{
		CourseID:        courseID,
		Title:           input.Title,
		ContentText:     input.ContentText,
		VideoURL:        videoURL,
		DocURL:          docURL,
		Order:           input.Order,
		XPAmount:        input.XPAmount,
		DurationMinutes: durationMinutes,
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		return nil, err
	}
	return module, nil
}

// ResolveModuleOwner 经由模块定位所属课程的创建者，供测验配置做权限校验
func (s *CourseService) ResolveModuleOwner(moduleID string) (string, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrModuleNotFound
		}
		return "", err
	}
	course, err := s.GetCourse(module.CourseID)
	if err != nil {
		return "", err
	}
	return course.CreatedBy, nil
}

// SetThumbnail 更新课程封面地址，仅限创建者
func (s *CourseService) SetThumbnail(courseID, userID, url string) (*model.Course, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatedBy != userID {
		return nil, util.ErrPermissionDenied
	}
	course.Thumbnail = url
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

// PublishCourse 幂等发布：对已发布课程再次发布是无操作的成功
func (s *CourseService) PublishCourse(courseID, userID string) (*model.Course, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatedBy != userID {
		return nil, util.ErrPermissionDenied
	}
	if course.Status == model.CoursePublished {
		return course, nil
	}
	if err := s.CourseRepo.UpdateStatus(courseID, model.CoursePublished); err != nil {
		return nil, err
	}
	course.Status = model.CoursePublished
	return course, nil
}

// CompleteModule 标记模块完成并触发课程进度重算。
// 两个副作用严格有序：先写模块完成标志，再读模块状态重算进度。
func (s *CourseService) CompleteModule(moduleID, userID string) error {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrModuleNotFound
		}
		return err
	}

	if err := s.ModuleRepo.SetCompleted(moduleID, true); err != nil {
		return err
	}

	progress, err := s.RecomputeCourseProgress(module.CourseID)
	if err != nil {
		return err
	}

	if s.EnrollRepo != nil {
		if enrollment, enrollErr := s.EnrollRepo.GetOrCreate(userID, module.CourseID); enrollErr == nil {
			if enrollErr = s.EnrollRepo.UpdateProgress(enrollment.ID, progress); enrollErr != nil {
				logger.Log.Warn("enrollment progress update failed",
					zap.String("user", userID), zap.String("course", module.CourseID), zap.Error(enrollErr))
			}
		}
	}

	if progress == 100 && s.OnCourseCompleted != nil {
		s.OnCourseCompleted(userID, module.CourseID)
	}
	return nil
}

// RecomputeCourseProgress 课程进度的唯一计算入口：
// progress = round(100 * 已完成模块数 / 模块总数)，isCompleted = (progress == 100)。
// 幂等：模块状态不变时重复调用得到同一值。
func (s *CourseService) RecomputeCourseProgress(courseID string) (int, error) {
	total, err := s.ModuleRepo.CountByCourse(courseID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, s.CourseRepo.UpdateProgress(courseID, 0, false)
	}

	completed, err := s.ModuleRepo.CountCompletedByCourse(courseID)
	if err != nil {
		return 0, err
	}

	progress := int(math.Round(100 * float64(completed) / float64(total)))
	if err := s.CourseRepo.UpdateProgress(courseID, progress, progress == 100); err != nil {
		return 0, err
	}
	return progress, nil
}
