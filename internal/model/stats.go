package model

import "time"

type Usage struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
}

type Network struct {
	Online bool   `json:"online"`
	Speed  string `json:"speed,omitempty"`
}

// SystemSnapshot is one sample pushed by a stats provider.
type SystemSnapshot struct {
	CPU     float64   `json:"cpu"`
	RAM     Usage     `json:"ram"`
	Disk    Usage     `json:"disk"`
	Network Network   `json:"network"`
	TakenAt time.Time `json:"takenAt"`
}
