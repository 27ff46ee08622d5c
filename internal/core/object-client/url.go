package objectclient

import "strings"

// ParseS3URL extracts bucket and key from either an s3://bucket/key URI or a
// virtual-hosted-style URL like
// https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf.
func ParseS3URL(u string) (bucket, key string, ok bool) {
	if rest, found := strings.CutPrefix(u, "s3://"); found {
		bucket, key, _ = strings.Cut(rest, "/")
		return bucket, key, bucket != "" && key != ""
	}

	rest, found := strings.CutPrefix(u, "https://")
	if !found {
		return "", "", false
	}
	host, path, _ := strings.Cut(rest, "/")
	if !strings.Contains(host, ".s3.") {
		return "", "", false
	}
	bucket = host[:strings.Index(host, ".s3.")]
	return bucket, path, bucket != "" && path != ""
}
