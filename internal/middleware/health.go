package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping() error
}

type HealthStatus struct {
	Status      string    `json:"status"`
	DB          string    `json:"db"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

var (
	healthMutex   sync.Mutex
	startTime     = time.Now()
	version       = "1.0.0"
	lastStatus    *HealthStatus
	lastCheckedAt time.Time
	cacheDuration = 5 * time.Second
)

// HealthCheckHandler reports process health plus a storage probe. The probe
// result is cached briefly so the endpoint cannot be used to hammer the DB.
func HealthCheckHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		healthMutex.Lock()
		defer healthMutex.Unlock()

		if lastStatus != nil && time.Since(lastCheckedAt) < cacheDuration {
			c.JSON(http.StatusOK, lastStatus)
			return
		}

		status := HealthStatus{
			Status:      "ok",
			DB:          "ok",
			LastChecked: time.Now(),
			Uptime:      time.Since(startTime).String(),
			Version:     version,
		}
		if err := store.Ping(); err != nil {
			status.Status = "degraded"
			status.DB = "fail"
		}

		lastStatus = &status
		lastCheckedAt = time.Now()

		c.JSON(http.StatusOK, status)
	}
}

// SetVersion overrides the reported application version.
func SetVersion(v string) {
	healthMutex.Lock()
	defer healthMutex.Unlock()

	version = v
	lastStatus = nil
}
