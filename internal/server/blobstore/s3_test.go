package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	data    map[string][]byte
	failPut error
	failDel error
}

func newFakeObjects() *fakeObjects { return &fakeObjects{data: map[string][]byte{}} }

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.data[*in.Bucket+"/"+*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.data[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.failDel != nil {
		return nil, f.failDel
	}
	delete(f.data, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresign struct {
	gotTTL time.Duration
	err    error
}

func (f *fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.gotTTL = o.Expires
	return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Bucket + "/" + *in.Key + "?X-Amz-Signature=abc"}, nil
}

func TestS3Store_PutGetDelete(t *testing.T) {
	objs := newFakeObjects()
	s := &S3Store{objects: objs, presign: &fakePresign{}, bucket: "vault"}
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("cipher")))
	assert.Equal(t, []byte("cipher"), objs.data["vault/k1"])

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("cipher"), got)

	require.NoError(t, s.Delete(ctx, "k1"))
	_, err = s.Get(ctx, "k1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_Errors(t *testing.T) {
	objs := newFakeObjects()
	objs.failPut = errors.New("503")
	objs.failDel = errors.New("403")
	s := &S3Store{objects: objs, presign: &fakePresign{err: errors.New("no creds")}, bucket: "vault"}
	ctx := context.Background()

	assert.ErrorContains(t, s.Put(ctx, "k", nil), "put object k")
	assert.ErrorContains(t, s.Delete(ctx, "k"), "delete object k")
	_, err := s.PresignGet(ctx, "k", time.Minute)
	assert.ErrorContains(t, err, "presign get k")
}

func TestS3Store_PresignGet(t *testing.T) {
	p := &fakePresign{}
	s := &S3Store{objects: newFakeObjects(), presign: p, bucket: "vault"}

	url, err := s.PresignGet(context.Background(), "blobs/x", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://s3.local/vault/blobs/x"))
	assert.Equal(t, 15*time.Minute, p.gotTTL)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bad profile")
}

func TestNewS3Store_UsesEndpointAndPathStyle(t *testing.T) {
	var opts s3.Options
	orig := newS3ClientFromConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}
	t.Cleanup(func() { newS3ClientFromConfig = orig })

	s, err := NewS3Store(context.Background(), S3Config{
		Region: "us-east-1", AccessKey: "a", SecretKey: "b", Bucket: "vault", Endpoint: "http://127.0.0.1:9000/",
	})
	require.NoError(t, err)
	assert.Equal(t, "vault", s.bucket)
	assert.True(t, opts.UsePathStyle)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
}

func TestNewStorageKey(t *testing.T) {
	k := NewStorageKey(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(k, "blobs/2026/02/03/"))
	assert.Len(t, strings.TrimPrefix(k, "blobs/2026/02/03/"), 36)
	assert.NotEqual(t, k, NewStorageKey(time.Now()))
}
