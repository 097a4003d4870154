package api

import "time"

// State is the JSON view of the coordinator exposed by the web front-end.
type State struct {
	View     string         `json:"view"`
	Phase    string         `json:"phase"`
	Report   *Report        `json:"report,omitempty"`
	History  []HistoryEntry `json:"history"`
	Files    []string       `json:"files"`
	Notices  []Notice       `json:"notices"`
	Controls Controls       `json:"controls"`
	Theme    string         `json:"theme"`
}

type Report struct {
	ID           *int64     `json:"id,omitempty"`
	Revenue      float64    `json:"revenue"`
	Expenses     float64    `json:"expenses"`
	NetProfit    float64    `json:"net_profit"`
	Margin       float64    `json:"margin"`
	HealthStatus string     `json:"health_status"`
	AIAnalysis   string     `json:"ai_analysis"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type HistoryEntry struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	HealthStatus string    `json:"health_status"`
	Margin       float64   `json:"margin"`
}

type Notice struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Controls struct {
	SubmitEnabled  bool `json:"submit_enabled"`
	HistoryEnabled bool `json:"history_enabled"`
}
