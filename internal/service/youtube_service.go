package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/pkg/logger"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubeUploadEndpoint = "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=resumable&part=snippet,status"
	// 27 = Education
	youtubeEducationCategory = "27"
)

// YouTubeVideo 面向客户端的视频摘要
type YouTubeVideo struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	ChannelName string `json:"channelName"`
	PublishedAt string `json:"publishedAt"`
	Duration    string `json:"duration,omitempty"`
	ViewCount   uint64 `json:"viewCount,omitempty"`
	URL         string `json:"url"`
}

// YouTubeService 课程视频托管：
// 培训师 OAuth token 走可恢复上传，平台 API key 走公开检索。
type YouTubeService struct {
	APIKey string
	HTTP   *http.Client
	// UploadEndpoint 可覆盖，测试指向本地假服务
	UploadEndpoint string
}

func NewYouTubeService(cfg *config.GoogleConfig) *YouTubeService {
	return &YouTubeService{
		APIKey:         cfg.YouTubeAPIKey,
		HTTP:           &http.Client{Timeout: 10 * time.Minute},
		UploadEndpoint: youtubeUploadEndpoint,
	}
}

// UploadVideo 可恢复上传协议：
// 先 POST 元数据初始化会话拿 Location，再向会话地址 PUT 视频字节。
// 成功返回规范播放地址 https://www.youtube.com/watch?v=<id>。
func (s *YouTubeService) UploadVideo(ctx context.Context, localPath, accessToken, title, description string) (string, error) {
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
		"snippet": map[string]interface{}{
			"title":       title,
			"description": description,
			"tags":        []string{"lms", "course"},
			"categoryId":  youtubeEducationCategory,
		},
		"status": map[string]interface{}{
			"privacyStatus": "unlisted",
		},
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
	req.Header.Set("X-Upload-Content-Type", "video/*")
	req.Header.Set("X-Upload-Content-Length", fmt.Sprintf("%d", stat.Size()))

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube upload session init failed: status %d", resp.StatusCode)
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", fmt.Errorf("youtube upload session init failed: no session location")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, f)
	if err != nil {
		return "", err
	}
	putReq.ContentLength = stat.Size()
	putReq.Header.Set("Content-Type", "video/*")

	putResp, err := s.HTTP.Do(putReq)
	if err != nil {
		return "", err
	}
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("youtube upload failed: status %d", putResp.StatusCode)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(putResp.Body).Decode(&uploaded); err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("youtube upload failed: empty video id")
	}

	logger.Log.Info("youtube video uploaded",
		zap.String("video_id", uploaded.ID), zap.String("title", title))
	return "https://www.youtube.com/watch?v=" + uploaded.ID, nil
}

// SearchVideos 按关键词检索公开教学视频
func (s *YouTubeService) SearchVideos(ctx context.Context, query string, limit int64) ([]YouTubeVideo, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(s.APIKey))
	if err != nil {
		return nil, err
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoEmbeddable("true").
		MaxResults(limit).
		Do()
	if err != nil {
		return nil, err
	}

	videos := make([]YouTubeVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := YouTubeVideo{
			VideoID:     item.Id.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			ChannelName: item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
			URL:         "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			v.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// GetVideoDetails 批量取视频时长与播放量
func (s *YouTubeService) GetVideoDetails(ctx context.Context, videoIDs []string) ([]YouTubeVideo, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(s.APIKey))
	if err != nil {
		return nil, err
	}

	resp, err := svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoIDs...).
		Do()
	if err != nil {
		return nil, err
	}

	videos := make([]YouTubeVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := YouTubeVideo{
			VideoID:     item.Id,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			ChannelName: item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
			URL:         "https://www.youtube.com/watch?v=" + item.Id,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			v.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
		if item.ContentDetails != nil {
			v.Duration = item.ContentDetails.Duration
		}
		if item.Statistics != nil {
			v.ViewCount = item.Statistics.ViewCount
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// YouTubeChannel 频道概要
type YouTubeChannel struct {
	ChannelID       string `json:"channelId"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	SubscriberCount uint64 `json:"subscriberCount,omitempty"`
	VideoCount      uint64 `json:"videoCount,omitempty"`
}

// GetChannelDetails 频道详情，用于展示课程视频来源
func (s *YouTubeService) GetChannelDetails(ctx context.Context, channelID string) (*YouTubeChannel, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(s.APIKey))
	if err != nil {
		return nil, err
	}

	resp, err := svc.Channels.List([]string{"snippet", "statistics"}).
		Id(channelID).
		Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}

	item := resp.Items[0]
	ch := &YouTubeChannel{
		ChannelID:   item.Id,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
	}
	if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
		ch.Thumbnail = item.Snippet.Thumbnails.High.Url
	}
	if item.Statistics != nil {
		ch.SubscriberCount = item.Statistics.SubscriberCount
		ch.VideoCount = item.Statistics.VideoCount
	}
	return ch, nil
}

// GetPlaylistVideos 拉取播放列表条目，供批量导入课程模块参考
func (s *YouTubeService) GetPlaylistVideos(ctx context.Context, playlistID string, limit int64) ([]YouTubeVideo, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(s.APIKey))
	if err != nil {
		return nil, err
	}

	resp, err := svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(limit).
		Do()
	if err != nil {
		return nil, err
	}

	videos := make([]YouTubeVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil {
			continue
		}
		v := YouTubeVideo{
			VideoID:     item.ContentDetails.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			ChannelName: item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
			URL:         "https://www.youtube.com/watch?v=" + item.ContentDetails.VideoId,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			v.Thumbnail = item.Snippet.Thumbnails.High.Url
		}
		videos = append(videos, v)
	}
	return videos, nil
}
