package domain

// ObjectMetadata is the subset of an LMS repository object exposed to clients.
type ObjectMetadata struct {
	RefID      int64  `json:"ref_id"`
	Title      string `json:"title"`
	Desc       string `json:"desc"`
	Owner      int64  `json:"owner"`
	CreateDate string `json:"createDate"`
	LastUpdate string `json:"lastUpdate"`
	ImportID   string `json:"importId"`
}
