package dto

import "time"

// SystemMetricsResponse is a lightweight metrics snapshot for API consumers.
type SystemMetricsResponse struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	SolvesTotal              uint64    `json:"solvesTotal"`
	AverageSolveDurationMs   float64   `json:"averageSolveDurationMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
