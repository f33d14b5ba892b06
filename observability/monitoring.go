package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

const maxRecentUploads = 20

// RecentUpload is one entry of the upload history.
type RecentUpload struct {
	Session   string
	Filename  string
	Mime      string
	Status    string
	Timestamp string
}

// MonitoringStats aggregates the analyzer counters and process memory.
type MonitoringStats struct {
	Uploads        uint64
	FailedUploads  uint64
	Analyses       uint64
	BytesUploaded  uint64
	SkippedLines   uint64
	ActiveSessions int

	AllocMemMb    uint64
	RSSMb         uint64
	NumGC         uint32
	RecentUploads []RecentUpload
}

type MonitoringManager struct {
	log *slog.Logger
	mu  sync.RWMutex

	recent   []RecentUpload
	sessions int

	uploads       uint64
	failedUploads uint64
	analyses      uint64
	bytesUploaded uint64
	skippedLines  uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{
		log:    log,
		recent: make([]RecentUpload, 0),
	}
}

func (mm *MonitoringManager) IncrAnalyses() {
	atomic.AddUint64(&mm.analyses, 1)
}

func (mm *MonitoringManager) IncrSkippedLines(n int) {
	atomic.AddUint64(&mm.skippedLines, uint64(n))
}

// RecordUpload counts an upload attempt and keeps it in the recent history, newest first.
func (mm *MonitoringManager) RecordUpload(session, filename, mime string, size int, err error) {
	status := "parsed"
	if err != nil {
		status = "failed"
		atomic.AddUint64(&mm.failedUploads, 1)
	} else {
		atomic.AddUint64(&mm.uploads, 1)
		atomic.AddUint64(&mm.bytesUploaded, uint64(size))
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	upload := RecentUpload{
		Session:   session,
		Filename:  filename,
		Mime:      mime,
		Status:    status,
		Timestamp: time.Now().Format("15:04:05"),
	}
	mm.recent = append([]RecentUpload{upload}, mm.recent...)
	if len(mm.recent) > maxRecentUploads {
		mm.recent = mm.recent[:maxRecentUploads]
	}
}

func (mm *MonitoringManager) SetActiveSessions(n int) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.sessions = n
}

// GetLatest reads the counters and samples the process memory.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	stats := MonitoringStats{
		Uploads:        atomic.LoadUint64(&mm.uploads),
		FailedUploads:  atomic.LoadUint64(&mm.failedUploads),
		Analyses:       atomic.LoadUint64(&mm.analyses),
		BytesUploaded:  atomic.LoadUint64(&mm.bytesUploaded),
		SkippedLines:   atomic.LoadUint64(&mm.skippedLines),
		ActiveSessions: mm.sessions,
		RecentUploads:  append([]RecentUpload(nil), mm.recent...),
	}
	mm.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		mm.log.Debug("Error while retrieving process", "pid", os.Getpid(), "err", err)
		return stats
	}
	info, err := p.MemoryInfo()
	if err != nil {
		mm.log.Debug("Error while reading process memory", "err", err)
		return stats
	}
	stats.RSSMb = info.RSS / 1024 / 1024

	mm.log.Debug("Stats updated",
		"uploads", stats.Uploads,
		"analyses", stats.Analyses,
		"mem_mb", stats.AllocMemMb,
		"rss_mb", stats.RSSMb,
	)
	return stats
}
