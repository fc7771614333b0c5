package model

// Source upload outcomes for a single service of a deployment.
const (
	UploadUploaded = "uploaded"
	UploadFailed   = "failed"
	UploadSkipped  = "skipped"
)

// ServiceUpload is the per-service outcome of a deployment.
type ServiceUpload struct {
	Index    int    `json:"index"`
	Repo     string `json:"repo"`
	Branch   string `json:"branch"`
	UniqueID string `json:"unique_id"`
	Key      string `json:"key"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// DeployResult collects the upload outcome of every service in a deployment.
type DeployResult struct {
	StackName string          `json:"stack_name"`
	Bucket    string          `json:"bucket"`
	Services  []ServiceUpload `json:"services"`
}

// Uploaded returns the unique ids of the services whose source was uploaded, in list order.
func (r *DeployResult) Uploaded() []string {
	var ids []string
	for _, s := range r.Services {
		if s.Status == UploadUploaded {
			ids = append(ids, s.UniqueID)
		}
	}
	return ids
}

// Failed reports whether any service failed or was skipped.
func (r *DeployResult) Failed() bool {
	for _, s := range r.Services {
		if s.Status != UploadUploaded {
			return true
		}
	}
	return false
}
