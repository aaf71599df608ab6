package model

const (
	TopicTorrentIngested = "torrent.ingested"
)

// TorrentIngested is published as JSON after a new torrent is stored.
type TorrentIngested struct {
	InfoHash    string `json:"info_hash"`
	Name        string `json:"name"`
	TotalLength int64  `json:"total_length"`
	Files       int    `json:"files"`
	Private     bool   `json:"private"`
}
