package models

// DownloadStatus is the lifecycle of a single download:
// pending → downloading → {completed | failed}.
type DownloadStatus string

const (
	DownloadPending     DownloadStatus = "pending"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
)

// DownloadProgress is ephemeral per-material download state. It exists only
// while a download is active or briefly after completion; the UI polls it.
type DownloadProgress struct {
	MaterialID string
	Percent    int
	Status     DownloadStatus
}
