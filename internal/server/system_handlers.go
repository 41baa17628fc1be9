package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/yieldboard/internal/database"
	"github.com/aristath/yieldboard/internal/di"
	"github.com/aristath/yieldboard/internal/scheduler"
)

// SystemHandlers serves status and operations endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	container *di.Container
	jobs      map[string]scheduler.Job
	startedAt time.Time

	// systemStats returns CPU and RAM usage percentages
	systemStats func() (float64, float64)
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status          string                     `json:"status"`
	Version         string                     `json:"version"`
	UptimeSeconds   int64                      `json:"uptime_seconds"`
	GoVersion       string                     `json:"go_version"`
	Goroutines      int                        `json:"goroutines"`
	CPUPercent      float64                    `json:"cpu_percent"`
	MemoryPercent   float64                    `json:"memory_percent"`
	RateSeries      string                     `json:"rate_series"`
	LatestRate      *RateInfo                  `json:"latest_rate,omitempty"`
	APIRequestsLeft *int                       `json:"api_requests_left,omitempty"`
	CachedResponses int                        `json:"cached_responses"`
	Databases       map[string]*database.Stats `json:"databases"`
	LastChecked     string                     `json:"last_checked"`
}

// RateInfo is the most recent stored rate observation
type RateInfo struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(log zerolog.Logger, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		container: container,
		jobs:      make(map[string]scheduler.Job),
		startedAt: time.Now(),
	}
	h.systemStats = h.getSystemStats

	if jobs != nil {
		for _, job := range []scheduler.Job{
			jobs.RateRefresh,
			jobs.PriceSync,
			jobs.ClientDataCleanup,
			jobs.CachePurge,
			jobs.CheckDatabases,
			jobs.WALCheckpoints,
		} {
			h.jobs[job.Name()] = job
		}
		if jobs.Backup != nil {
			h.jobs[jobs.Backup.Name()] = jobs.Backup
		}
	}

	return h
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.systemStats()
	c := h.container

	response := SystemStatusResponse{
		Status:          "ok",
		Version:         Version,
		UptimeSeconds:   int64(time.Since(h.startedAt).Seconds()),
		GoVersion:       runtime.Version(),
		Goroutines:      runtime.NumGoroutine(),
		CPUPercent:      cpuPercent,
		MemoryPercent:   memPercent,
		RateSeries:      c.RateService.Series(),
		CachedResponses: c.ResponseCache.Len(),
		Databases:       h.databaseStats(),
		LastChecked:     time.Now().Format(time.RFC3339),
	}

	latest, err := c.RateService.Latest()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read latest rate")
		response.Status = "degraded"
	} else if latest != nil {
		response.LatestRate = &RateInfo{Date: latest.Date.Format("2006-01-02"), Rate: latest.Rate}
	}

	if c.AlphaVantageClient != nil {
		left := c.AlphaVantageClient.GetRemainingRequests()
		response.APIRequestsLeft = &left
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases":    h.databaseStats(),
		"last_checked": time.Now().Format(time.RFC3339),
	})
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	var statuses []scheduler.JobStatus
	if h.container.Scheduler != nil {
		statuses = h.container.Scheduler.Jobs()
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": statuses,
	})
}

// HandleTriggerJob handles POST /api/system/jobs/{name}. The job runs in
// the background; the response only confirms it was started.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		http.Error(w, "Unknown job: "+name, http.StatusNotFound)
		return
	}

	go func() {
		var err error
		if h.container.Scheduler != nil {
			err = h.container.Scheduler.RunNow(job)
		} else {
			err = job.Run()
		}
		if err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Triggered job failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "started",
		"job":     name,
		"message": "Job triggered",
	})
}

func (h *SystemHandlers) databaseStats() map[string]*database.Stats {
	stats := make(map[string]*database.Stats)
	for name, db := range h.container.Databases() {
		s, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			continue
		}
		stats[name] = s
	}
	return stats
}

// getSystemStats calculates CPU and RAM usage percentages over a short
// sampling window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
