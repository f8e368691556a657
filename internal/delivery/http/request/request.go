package request

type CloneRequest struct {
	URL string `json:"url"`
}
