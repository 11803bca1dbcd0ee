package domain

// JobPosting is one row of the internship table.
type JobPosting struct {
	ID             string `json:"id"`
	Company        string `json:"company"`
	Role           string `json:"role"`
	Location       string `json:"location"`
	ApplicationURL string `json:"applicationUrl"`
	Age            string `json:"age"`
	Category       string `json:"category"`
}

// AgeUnknown is used when a row carries no freshness marker.
const AgeUnknown = "N/A"
