package model

// Stats is the backend's aggregate for the current user (GET /stats) and
// for any user (GET /user/{username}).
type Stats struct {
	Username    string         `json:"username,omitempty"`
	TotalSolved int            `json:"total_solved"`
	ByLanguage  map[string]int `json:"by_language"`
	Recent      []RecentPush   `json:"recent"`
}

type RecentPush struct {
	Filename  string    `json:"filename"`
	Timestamp Timestamp `json:"timestamp"`
}

type RankingEntry struct {
	Username    string         `json:"username"`
	TotalSolved int            `json:"total_solved"`
	ByLanguage  map[string]int `json:"by_language"`
	TotalPoint  int            `json:"total_point"`
}

type SearchResult struct {
	Username    string `json:"username"`
	TotalSolved int    `json:"total_solved"`
}

type Streak struct {
	Streak     int `json:"streak"`
	FrozenUsed int `json:"frozen_used"`
}

// Repository is a GitHub repository the user may push to.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}
