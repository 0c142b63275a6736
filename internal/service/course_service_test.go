package service

import (
	"context"
	"errors"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"testing"

	"gorm.io/gorm"
)

type fakeCourseStore struct {
	courses       map[string]*model.Course
	statusUpdates []string
	progress      map[string]int
}

func newFakeCourseStore(courses ...*model.Course) *fakeCourseStore {
	store := &fakeCourseStore{
		courses:  make(map[string]*model.Course),
		progress: make(map[string]int),
	}
	for _, c := range courses {
		store.courses[c.ID] = c
	}
	return store
}

func (f *fakeCourseStore) Create(course *model.Course) error {
	if course.ID == "" {
		course.ID = model.GenerateUUID()
	}
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseStore) FindByID(id string) (*model.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseStore) FindByCreator(userID string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range f.courses {
		if c.CreatedBy == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) FindPublished() ([]model.Course, error) {
	var out []model.Course
	for _, c := range f.courses {
		if c.Status == model.CoursePublished {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) Update(course *model.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseStore) UpdateStatus(id string, status model.CourseStatus) error {
	f.statusUpdates = append(f.statusUpdates, id)
	f.courses[id].Status = status
	return nil
}

func (f *fakeCourseStore) UpdateProgress(id string, progress int, completed bool) error {
	f.progress[id] = progress
	return nil
}

type fakeModuleStore struct {
	modules        map[string]*model.Module
	created        []*model.Module
	completedCalls []string
	total          int64
	completed      int64
}

func (f *fakeModuleStore) Create(module *model.Module) error {
	if module.ID == "" {
		module.ID = model.GenerateUUID()
	}
	if f.modules == nil {
		f.modules = make(map[string]*model.Module)
	}
	f.modules[module.ID] = module
	f.created = append(f.created, module)
	return nil
}

func (f *fakeModuleStore) FindByID(id string) (*model.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeModuleStore) FindByCourse(courseID string) ([]model.Module, error) {
	var out []model.Module
	for _, m := range f.modules {
		if m.CourseID == courseID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeModuleStore) SetCompleted(id string, completed bool) error {
	f.completedCalls = append(f.completedCalls, id)
	if completed {
		f.completed++
	}
	return nil
}

func (f *fakeModuleStore) CountByCourse(courseID string) (int64, error) {
	return f.total, nil
}

func (f *fakeModuleStore) CountCompletedByCourse(courseID string) (int64, error) {
	return f.completed, nil
}

type fakeEnrollStore struct {
	enrollments map[string]*model.Enrollment
	progress    map[string]int
}

func (f *fakeEnrollStore) GetOrCreate(userID, courseID string) (*model.Enrollment, error) {
	key := userID + "/" + courseID
	if f.enrollments == nil {
		f.enrollments = make(map[string]*model.Enrollment)
	}
	if e, ok := f.enrollments[key]; ok {
		return e, nil
	}
	e := &model.Enrollment{UserID: userID, CourseID: courseID}
	e.ID = key
	f.enrollments[key] = e
	return e, nil
}

func (f *fakeEnrollStore) UpdateProgress(id string, progress int) error {
	if f.progress == nil {
		f.progress = make(map[string]int)
	}
	f.progress[id] = progress
	return nil
}

func (f *fakeEnrollStore) CountByCourse(courseID string) (int64, error) {
	var count int64
	for _, e := range f.enrollments {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollStore) FindByUser(userID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range f.enrollments {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// recordingUploader 记录调用顺序，可配置失败
type recordingUploader struct {
	calls *[]string
	url   string
	err   error
}

func (u *recordingUploader) UploadVideo(ctx context.Context, localPath, accessToken, title, description string) (string, error) {
	*u.calls = append(*u.calls, "video")
	return u.url, u.err
}

func (u *recordingUploader) UploadDocument(ctx context.Context, localPath, accessToken, filename, mimeType string) (string, error) {
	*u.calls = append(*u.calls, "doc")
	return u.url, u.err
}

func draftCourse(id, creator string) *model.Course {
	c := &model.Course{Title: "Sales Onboarding", Status: model.CourseDraft, CreatedBy: creator}
	c.ID = id
	return c
}

func newTestCourseService(courses *fakeCourseStore, modules *fakeModuleStore, calls *[]string) (*CourseService, *recordingUploader, *recordingUploader) {
	video := &recordingUploader{calls: calls, url: "https://www.youtube.com/watch?v=abc"}
	doc := &recordingUploader{calls: calls, url: "https://drive.google.com/file/d/xyz/view"}
	svc := NewCourseService(courses, modules, &fakeEnrollStore{}, video, doc)
	svc.Probe = nil
	return svc, video, doc
}

func TestAddModuleRequiresGoogleAuth(t *testing.T) {
	var calls []string
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{}
	svc, _, _ := newTestCourseService(courses, modules, &calls)

	_, err := svc.AddModule(context.Background(), "course-1", "trainer-1", "", ModuleInput{
		Title:     "Intro",
		VideoPath: "/tmp/video.mp4",
	})
	if !errors.Is(err, util.ErrGoogleAuthRequired) {
		t.Fatalf("expected ErrGoogleAuthRequired, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("credential gate must fire before any upload, got calls %v", calls)
	}
	if len(modules.created) != 0 {
		t.Fatalf("no module may be persisted without credentials")
	}
}

func TestAddModuleOnlyByCourseCreator(t *testing.T) {
	var calls []string
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{}
	svc, _, _ := newTestCourseService(courses, modules, &calls)

	_, err := svc.AddModule(context.Background(), "course-1", "trainer-2", "token", ModuleInput{
		Title:     "Intro",
		VideoPath: "/tmp/video.mp4",
	})
	if !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for foreign trainer, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("ownership check must fire before any upload, got calls %v", calls)
	}
	if len(modules.created) != 0 {
		t.Fatalf("foreign trainer must not persist a module")
	}
}

func TestResolveModuleOwner(t *testing.T) {
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{modules: map[string]*model.Module{}}
	m := &model.Module{CourseID: "course-1", Title: "Intro"}
	m.ID = "module-1"
	modules.modules[m.ID] = m
	svc, _, _ := newTestCourseService(courses, modules, &[]string{})

	owner, err := svc.ResolveModuleOwner("module-1")
	if err != nil {
		t.Fatalf("ResolveModuleOwner: %v", err)
	}
	if owner != "trainer-1" {
		t.Fatalf("owner = %q, want trainer-1", owner)
	}

	if _, err := svc.ResolveModuleOwner("no-such-module"); !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestAddModuleTextOnlyNeedsNoToken(t *testing.T) {
	var calls []string
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{}
	svc, _, _ := newTestCourseService(courses, modules, &calls)

	module, err := svc.AddModule(context.Background(), "course-1", "trainer-1", "", ModuleInput{
		Title:       "Reading",
		ContentText: "plain text lesson",
	})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if module.VideoURL != "" || module.DocURL != "" {
		t.Fatalf("text-only module must carry no attachment URLs")
	}
	if len(calls) != 0 {
		t.Fatalf("text-only module must not touch uploaders")
	}
}

func TestAddModuleUploadsVideoThenDoc(t *testing.T) {
	var calls []string
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{}
	svc, video, doc := newTestCourseService(courses, modules, &calls)

	module, err := svc.AddModule(context.Background(), "course-1", "trainer-1", "token", ModuleInput{
		Title:     "Intro",
		VideoPath: "/tmp/video.mp4",
		DocPath:   "/tmp/slides.pdf",
		DocName:   "slides.pdf",
		DocMime:   "application/pdf",
	})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}

	want := []string{"video", "doc"}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("upload order = %v, want %v", calls, want)
	}
	if module.VideoURL != video.url || module.DocURL != doc.url {
		t.Fatalf("module must carry both hosted URLs")
	}
	if len(modules.created) != 1 {
		t.Fatalf("module must be persisted once after uploads")
	}
}

func TestAddModuleVideoFailureAborts(t *testing.T) {
	var calls []string
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{}
	svc, video, _ := newTestCourseService(courses, modules, &calls)
	video.err = errors.New("quota exceeded")

	_, err := svc.AddModule(context.Background(), "course-1", "trainer-1", "token", ModuleInput{
		Title:     "Intro",
		VideoPath: "/tmp/video.mp4",
		DocPath:   "/tmp/slides.pdf",
	})
	if err == nil {
		t.Fatalf("video failure must abort the whole operation")
	}
	if len(calls) != 1 || calls[0] != "video" {
		t.Fatalf("doc upload must not start after video failure, got %v", calls)
	}
	if len(modules.created) != 0 {
		t.Fatalf("no module may be persisted after a failed upload")
	}
}

func TestPublishCourse(t *testing.T) {
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	svc, _, _ := newTestCourseService(courses, &fakeModuleStore{}, &[]string{})

	if _, err := svc.PublishCourse("course-1", "someone-else"); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	course, err := svc.PublishCourse("course-1", "trainer-1")
	if err != nil {
		t.Fatalf("PublishCourse: %v", err)
	}
	if course.Status != model.CoursePublished {
		t.Fatalf("course status = %v, want published", course.Status)
	}

	// 重复发布是无操作的成功
	if _, err := svc.PublishCourse("course-1", "trainer-1"); err != nil {
		t.Fatalf("republish: %v", err)
	}
	if len(courses.statusUpdates) != 1 {
		t.Fatalf("republish must not issue another status update, got %d", len(courses.statusUpdates))
	}
}

func TestEnrollRejectsDraftCourse(t *testing.T) {
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	svc, _, _ := newTestCourseService(courses, &fakeModuleStore{}, &[]string{})

	if _, err := svc.Enroll("user-1", "course-1"); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("draft course must not be enrollable, got %v", err)
	}
}

func TestEnrollPublishedCourse(t *testing.T) {
	course := draftCourse("course-1", "trainer-1")
	course.Status = model.CoursePublished
	courses := newFakeCourseStore(course)
	enrolls := &fakeEnrollStore{}
	svc := NewCourseService(courses, &fakeModuleStore{}, enrolls, nil, nil)

	first, err := svc.Enroll("user-1", "course-1")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	// 重复选课返回同一条记录
	second, err := svc.Enroll("user-1", "course-1")
	if err != nil {
		t.Fatalf("re-Enroll: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("duplicate enroll must return the existing record")
	}
	if course.Enrolled != 1 {
		t.Fatalf("enrolled count = %d, want 1", course.Enrolled)
	}
}

func TestRecomputeCourseProgress(t *testing.T) {
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{total: 3, completed: 2}
	svc, _, _ := newTestCourseService(courses, modules, &[]string{})

	progress, err := svc.RecomputeCourseProgress("course-1")
	if err != nil {
		t.Fatalf("RecomputeCourseProgress: %v", err)
	}
	if progress != 67 {
		t.Fatalf("2/3 progress = %d, want 67", progress)
	}
	if courses.progress["course-1"] != 67 {
		t.Fatalf("progress not written through the course store")
	}

	// 幂等：状态不变重复调用得同一值
	again, err := svc.RecomputeCourseProgress("course-1")
	if err != nil || again != progress {
		t.Fatalf("recompute must be idempotent, got %d err %v", again, err)
	}
}

func TestRecomputeCourseProgressEmptyCourse(t *testing.T) {
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{total: 0}
	svc, _, _ := newTestCourseService(courses, modules, &[]string{})

	progress, err := svc.RecomputeCourseProgress("course-1")
	if err != nil {
		t.Fatalf("RecomputeCourseProgress: %v", err)
	}
	if progress != 0 {
		t.Fatalf("empty course progress = %d, want 0", progress)
	}
}

func TestCompleteModuleTriggersCourseCompletion(t *testing.T) {
	courses := newFakeCourseStore(draftCourse("course-1", "trainer-1"))
	modules := &fakeModuleStore{total: 1}
	m := &model.Module{CourseID: "course-1", Title: "Intro"}
	m.ID = "module-1"
	modules.modules = map[string]*model.Module{"module-1": m}

	svc, _, _ := newTestCourseService(courses, modules, &[]string{})
	var completedUser, completedCourse string
	svc.OnCourseCompleted = func(userID, courseID string) {
		completedUser, completedCourse = userID, courseID
	}

	if err := svc.CompleteModule("module-1", "user-1"); err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}

	if len(modules.completedCalls) != 1 || modules.completedCalls[0] != "module-1" {
		t.Fatalf("module completion flag not written: %v", modules.completedCalls)
	}
	if courses.progress["course-1"] != 100 {
		t.Fatalf("course progress = %d, want 100", courses.progress["course-1"])
	}
	if completedUser != "user-1" || completedCourse != "course-1" {
		t.Fatalf("completion hook got (%q, %q)", completedUser, completedCourse)
	}
}

func TestCompleteModuleUnknownModule(t *testing.T) {
	courses := newFakeCourseStore()
	svc, _, _ := newTestCourseService(courses, &fakeModuleStore{}, &[]string{})

	if err := svc.CompleteModule("ghost", "user-1"); !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}
