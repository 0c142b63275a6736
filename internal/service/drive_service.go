package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"indosat_lms_backend/pkg/logger"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const driveUploadEndpoint = "https://www.googleapis.com/upload/drive/v3/files?uploadType=resumable"

// DriveService 课程文档托管到培训师自己的 Google Drive
type DriveService struct {
	HTTP *http.Client
	// UploadEndpoint 可覆盖，测试指向本地假服务
	UploadEndpoint string
}

func NewDriveService() *DriveService {
	return &DriveService{
		HTTP:           &http.Client{Timeout: 10 * time.Minute},
		UploadEndpoint: driveUploadEndpoint,
	}
}

// UploadDocument 可恢复上传 + 公开只读授权，返回 webViewLink。
// 授权步骤失败只降级告警：文件已在 Drive，链接仍然有效，
// 只是访问者可能需要登录。
func (s *DriveService) UploadDocument(ctx context.Context, localPath, accessToken, filename, mimeType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	meta := map[string]interface{}{
		"name":     filename,
		"mimeType": mimeType,
	}
	body, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.UploadEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", mimeType)
	req.Header.Set("X-Upload-Content-Length", fmt.Sprintf("%d", stat.Size()))

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("drive upload session init failed: status %d", resp.StatusCode)
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", fmt.Errorf("drive upload session init failed: no session location")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, f)
	if err != nil {
		return "", err
	}
	putReq.ContentLength = stat.Size()
	putReq.Header.Set("Content-Type", mimeType)

	putResp, err := s.HTTP.Do(putReq)
	if err != nil {
		return "", err
	}
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("drive upload failed: status %d", putResp.StatusCode)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(putResp.Body).Decode(&uploaded); err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("drive upload failed: empty file id")
	}

	link, err := s.shareAndLink(ctx, accessToken, uploaded.ID)
	if err != nil {
		logger.Log.Warn("drive public share failed, returning default link",
			zap.String("file_id", uploaded.ID), zap.Error(err))
		return "https://drive.google.com/file/d/" + uploaded.ID + "/view", nil
	}
	return link, nil
}

// shareAndLink 授予 anyone/reader 权限并读取 webViewLink
func (s *DriveService) shareAndLink(ctx context.Context, accessToken, fileID string) (string, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return "", err
	}

	_, err = svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Do()
	if err != nil {
		return "", err
	}

	file, err := svc.Files.Get(fileID).Fields("webViewLink").Do()
	if err != nil {
		return "", err
	}
	if file.WebViewLink == "" {
		return "", fmt.Errorf("drive file %s has no web view link", fileID)
	}
	return file.WebViewLink, nil
}
