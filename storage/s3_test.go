package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is a scripted S3API.
type fakeS3 struct {
	headErr   error
	copyErr   error
	deleteErr error
	listOut   *s3.ListObjectsV2Output

	copyInput *s3.CopyObjectInput
	listInput *s3.ListObjectsV2Input
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(10)}, nil
}

func (f *fakeS3) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copyInput = params
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listInput = params
	return f.listOut, nil
}

func TestExists(t *testing.T) {
	ctx := context.Background()

	ok, err := NewS3Store(&fakeS3{}).Exists(ctx, "b", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewS3Store(&fakeS3{headErr: &types.NotFound{}}).Exists(ctx, "b", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewS3Store(&fakeS3{headErr: &smithy.GenericAPIError{Code: "NotFound"}}).Exists(ctx, "b", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewS3Store(&fakeS3{headErr: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}).Exists(ctx, "b", "k")
	require.Error(t, err)
	assert.Equal(t, "AccessDenied", ErrorCode(err))
}

func TestCopyEncodesSource(t *testing.T) {
	f := &fakeS3{}
	err := NewS3Store(f).Copy(context.Background(), "test-bucket", "images2/Ficus religiosa/img 1.jpg", "images2/Acacia/img 1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "test-bucket/images2/Ficus%20religiosa/img%201.jpg", aws.ToString(f.copyInput.CopySource))
	assert.Equal(t, "images2/Acacia/img 1.jpg", aws.ToString(f.copyInput.Key))
}

func TestCopyFailureIsWrapped(t *testing.T) {
	f := &fakeS3{copyErr: errors.New("throttled")}
	err := NewS3Store(f).Copy(context.Background(), "b", "src", "dst")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "copyObject", se.Op)
	assert.Equal(t, "dst", se.Key)

	f = &fakeS3{copyErr: &types.NoSuchKey{}}
	err = NewS3Store(f).Copy(context.Background(), "b", "src", "dst")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestList(t *testing.T) {
	now := time.Now()
	f := &fakeS3{listOut: &s3.ListObjectsV2Output{
		CommonPrefixes: []types.CommonPrefix{{Prefix: aws.String("images2/Acacia/")}, {Prefix: aws.String("images2/Ficus religiosa/")}},
		Contents:       []types.Object{{Key: aws.String("images2/readme.txt"), Size: aws.Int64(42), LastModified: &now}},
		IsTruncated:    aws.Bool(true),
	}}
	listing, err := NewS3Store(f).List(context.Background(), "b", "images2", 100)
	require.NoError(t, err)

	assert.Equal(t, "images2/", aws.ToString(f.listInput.Prefix))
	assert.Equal(t, "/", aws.ToString(f.listInput.Delimiter))
	assert.Equal(t, []string{"Acacia", "Ficus religiosa"}, listing.Folders)
	require.Len(t, listing.Objects, 1)
	assert.Equal(t, int64(42), listing.Objects[0].Size)
	assert.True(t, listing.IsTruncated)
}

func TestMemoryStoreList(t *testing.T) {
	m := NewMemoryStore()
	m.Put("b", "images2/Acacia/a.jpg", 1)
	m.Put("b", "images2/Acacia/b.jpg", 1)
	m.Put("b", "images2/Ficus/c.jpg", 1)
	m.Put("b", "images2/top.txt", 1)

	listing, err := m.List(context.Background(), "b", "images2", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acacia", "Ficus"}, listing.Folders)
	require.Len(t, listing.Objects, 1)
	assert.Equal(t, "images2/top.txt", listing.Objects[0].Key)

	_, err = m.List(context.Background(), "missing", "", 0)
	assert.Equal(t, "NoSuchBucket", ErrorCode(err))
}
