package staging

// Partition is a logical namespace of the staging store.
type Partition string

const (
	// Downloaded holds remote file records awaiting a local counterpart.
	Downloaded Partition = "1"
	// Scanned holds local file records awaiting a remote counterpart.
	Scanned Partition = "2"
	// Changed holds change records awaiting report.
	Changed Partition = "3"
	// UploadQueue holds change records awaiting upload.
	UploadQueue Partition = "4"
)

// String returns the human readable name of the partition.
func (p Partition) String() string {
	switch p {
	case Downloaded:
		return "downloaded"
	case Scanned:
		return "scanned"
	case Changed:
		return "changed"
	case UploadQueue:
		return "upload-queue"
	default:
		return "unknown"
	}
}

func (p Partition) key(k string) string {
	return string(p) + ":" + k
}

// bounds returns the half-open key range [lo, hi) of the partition.
func (p Partition) bounds() (string, string) {
	return string(p) + ":", string(p) + ";"
}

func (p Partition) strip(full string) string {
	return full[len(p)+1:]
}
