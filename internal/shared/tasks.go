package shared

// Task types handled by the worker.
const (
	TypePurgeBlob           = "storage:purge_blob"
	TypeReconcileIdentities = "auth:reconcile_identities"
)

// Queue names by priority.
const (
	QueueDefault = "default"
	QueueCleanup = "low"
)

// PurgeBlobPayload identifies one object whose inline delete failed.
type PurgeBlobPayload struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ReconcileIdentitiesPayload is empty; the job derives its work set itself.
type ReconcileIdentitiesPayload struct{}
