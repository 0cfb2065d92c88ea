package api

const maxBodySize = 64 * 1024 // 64 KiB

// POST /api/items and PUT /api/items/:id/progress success body
type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PUT /api/items/:id/progress request body
type progressRequest struct {
	Progress string `json:"progress"`
}
