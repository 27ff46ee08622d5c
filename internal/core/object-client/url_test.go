package objectclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseS3URL(t *testing.T) {
	cases := []struct {
		in     string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://docs/reports/q1.pdf", "docs", "reports/q1.pdf", true},
		{"s3://docs/top-level.pdf", "docs", "top-level.pdf", true},
		{"https://docs.s3.us-east-2.amazonaws.com/reports/q1.pdf", "docs", "reports/q1.pdf", true},
		{"s3://bucket-only", "", "", false},
		{"s3:///no-bucket.pdf", "", "", false},
		{"https://example.com/file.pdf", "", "", false},
		{"http://docs.s3.us-east-2.amazonaws.com/file.pdf", "", "", false},
		{"/local/path/file.pdf", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range cases {
		bucket, key, ok := ParseS3URL(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.bucket, bucket, tc.in)
			assert.Equal(t, tc.key, key, tc.in)
		}
	}
}
