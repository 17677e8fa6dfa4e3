package models

// WatchCommand asks the session to toggle a stop on the rider's watch-list.
type WatchCommand struct {
	StopID int `json:"stop_id"`
}
