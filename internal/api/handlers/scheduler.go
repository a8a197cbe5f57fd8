package handlers

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/wonny/trendscore/internal/scheduler"
	"github.com/wonny/trendscore/pkg/logger"
)

// SchedulerHandler exposes warm-up job stats
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(s *scheduler.Scheduler, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: s,
		logger:    log,
	}
}

// GetJobs returns stats for every registered job, sorted by name
// GET /api/scheduler/jobs
func (h *SchedulerHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	stats := h.scheduler.GetJobStats()

	jobs := make([]scheduler.JobStats, 0, len(stats))
	for _, s := range stats {
		jobs = append(jobs, s)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobName < jobs[j].JobName })

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": jobs,
	})
}

// RunJob triggers a job outside its schedule
// POST /api/scheduler/jobs/{name}/run
func (h *SchedulerHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.scheduler.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "started",
	})
}
