package dto

type UploadResponse struct {
	Url string `json:"url"`
}

// DeleteUploadRequest accepts the single-url and bulk forms of the delete
// body interchangeably.
type DeleteUploadRequest struct {
	Url  string   `json:"url"`
	Urls []string `json:"urls"`
}

func (r DeleteUploadRequest) AllUrls() []string {
	urls := make([]string, 0, len(r.Urls)+1)
	if r.Url != "" {
		urls = append(urls, r.Url)
	}
	urls = append(urls, r.Urls...)
	return urls
}

type DeleteUploadResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}
