package model

// Read-only provider catalog entries backing the request form.

type ImageInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OSFlavor    string `json:"os_flavor,omitempty"`
	OSVersion   string `json:"os_version,omitempty"`
}

type ServerTypeInfo struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Cores    int     `json:"cores"`
	MemoryGB float64 `json:"memory_gb"`
	DiskGB   int     `json:"disk_gb"`
}

type LocationInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}
