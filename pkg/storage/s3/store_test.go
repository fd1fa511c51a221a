package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arjunmehta/desikart-backend/pkg/config"
)

type fakeObjectAPI struct {
	objects map[string][]byte
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: make(map[string][]byte)}
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = data
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeObjectAPI) HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(params.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{}, nil
}

func TestStorePutGetExists(t *testing.T) {
	api := newFakeObjectAPI()
	store := &Store{api: api, bucket: "invoices"}
	ctx := context.Background()

	key := "invoices/invoice_ORD1234567890.html"
	if err := store.Put(ctx, key, []byte("<html>invoice</html>"), "text/html"); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := store.Exists(ctx, key)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("expected object to exist")
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "<html>invoice</html>" {
		t.Fatalf("unexpected content %q", data)
	}

	ok, err = store.Exists(ctx, "invoices/missing.html")
	if err != nil {
		t.Fatalf("exists missing: %v", err)
	}
	if ok {
		t.Fatalf("expected missing object to not exist")
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	store := &Store{api: newFakeObjectAPI(), bucket: "invoices"}
	ctx := context.Background()

	if err := store.Put(ctx, "", nil, "text/html"); err == nil {
		t.Fatalf("expected error for empty key on put")
	}
	if _, err := store.Get(ctx, ""); err == nil {
		t.Fatalf("expected error for empty key on get")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{"empty", config.StorageConfig{}, ""},
		{"already http", config.StorageConfig{Endpoint: "http://minio:9000"}, "http://minio:9000"},
		{"ssl default", config.StorageConfig{Endpoint: "minio:9000", UseSSL: true}, "https://minio:9000"},
		{"plain", config.StorageConfig{Endpoint: "minio:9000"}, "http://minio:9000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeEndpoint(tc.cfg); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
