package db

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
	Healthy       bool  `json:"healthy"`
}

// GetPoolStats returns connection pool counters. Healthy is left for the
// caller to set from an actual ping; the counters alone cannot tell a live
// database from a dead one.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
}

func healthResponse(stats *PoolStats, pingErr error) (int, map[string]interface{}) {
	stats.Healthy = pingErr == nil
	if pingErr != nil {
		return http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"pool":   stats,
		}
	}
	return http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"pool":   stats,
	}
}

// HealthHandler returns a handler for the database health check endpoint.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		code, body := healthResponse(GetPoolStats(pool), pool.Ping(ctx))
		return c.JSON(code, body)
	}
}
