package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path"
	"sort"
	"strings"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store is an implementation of schema.Store which keeps each
// conversation as a {prefix}{id}.json object in a bucket
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// S3Opt is a functional option for an S3Store
type S3Opt func(*S3Store) error

var _ schema.Store = (*S3Store)(nil)
var _ S3API = (*s3.Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewS3Store creates a conversation store in an existing bucket
func NewS3Store(client S3API, bucket string, opts ...S3Opt) (*S3Store, error) {
	if client == nil {
		return nil, twin.ErrBadParameter.With("s3 client is required")
	}
	if bucket == "" {
		return nil, twin.ErrBadParameter.With("s3 bucket is required")
	}
	s := &S3Store{client: client, bucket: bucket}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewS3StoreWithConfig creates a conversation store from an AWS configuration
func NewS3StoreWithConfig(cfg aws.Config, bucket string, opts ...S3Opt) (*S3Store, error) {
	return NewS3Store(s3.NewFromConfig(cfg), bucket, opts...)
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithPrefix stores objects under a key prefix, e.g. "history/"
func WithPrefix(prefix string) S3Opt {
	return func(s *S3Store) error {
		if strings.HasPrefix(prefix, "/") {
			return twin.ErrBadParameter.Withf("prefix %q", prefix)
		}
		s.prefix = prefix
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (*S3Store) Name() string {
	return "s3"
}

// Bucket returns the bucket name
func (s *S3Store) Bucket() string {
	return s.bucket
}

// Load reads a conversation object. A missing object is an empty
// conversation.
func (s *S3Store) Load(ctx context.Context, id string) (schema.Conversation, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	response, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if isNoSuchKey(err) {
		return schema.Conversation{}, nil
	} else if err != nil {
		return nil, twin.ErrInternalServerError.Withf("s3 get %q: %v", s.key(id), err)
	}
	defer response.Body.Close()

	var conversation schema.Conversation
	if err := json.NewDecoder(response.Body).Decode(&conversation); err != nil {
		return nil, twin.ErrInternalServerError.Withf("unmarshal: %v", err)
	}
	return conversation, nil
}

// Save writes a conversation object, replacing any previous version
func (s *S3Store) Save(ctx context.Context, id string, conversation schema.Conversation) error {
	if err := checkID(id); err != nil {
		return err
	}
	if conversation == nil {
		conversation = schema.Conversation{}
	}

	data, err := json.MarshalIndent(conversation, "", "  ")
	if err != nil {
		return twin.ErrInternalServerError.Withf("marshal: %v", err)
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return twin.ErrInternalServerError.Withf("s3 put %q: %v", s.key(id), err)
	}
	return nil
}

// List returns the stored session identifiers in lexical order
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	var result []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, twin.ErrInternalServerError.Withf("s3 list: %v", err)
		}
		for _, object := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(object.Key), s.prefix)
			if path.Ext(name) != jsonExt {
				continue
			}
			if id := strings.TrimSuffix(name, jsonExt); checkID(id) == nil {
				result = append(result, id)
			}
		}
	}
	sort.Strings(result)
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (s *S3Store) key(id string) string {
	return s.prefix + id + jsonExt
}

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
