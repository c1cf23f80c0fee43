package s3

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kbukum/harvester/storage"
)

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name string
		opts awss3.Options
		want string
	}{
		{"aws", awss3.Options{Region: "eu-west-1"}, "https://bkt.s3.eu-west-1.amazonaws.com/run/a%20b.xlsx"},
		{"custom endpoint", awss3.Options{BaseEndpoint: aws.String("http://minio:9000")}, "http://minio:9000/bkt/run/a%20b.xlsx"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := objectURL(tc.opts, "bkt", "run/a b.xlsx"); got != tc.want {
				t.Errorf("objectURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(storage.Config{}); len(opts) != 0 {
		t.Errorf("expected no options for plain AWS, got %d", len(opts))
	}
	var o awss3.Options
	for _, fn := range clientOptions(storage.Config{Endpoint: "http://minio:9000"}) {
		fn(&o)
	}
	if aws.ToString(o.BaseEndpoint) != "http://minio:9000" || !o.UsePathStyle {
		t.Errorf("unexpected options %+v", o)
	}
}
