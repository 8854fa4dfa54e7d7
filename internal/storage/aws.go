package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lumewave/agency-site/internal/domain"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// DynamoAPI is the subset of the DynamoDB client used for the revision log.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// revisionItem is one row of the DynamoDB revision log.
type revisionItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Key       string `dynamodbav:"Key"`
	Size      int64  `dynamodbav:"Size"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

const revisionRetention = 365 * 24 * time.Hour

// S3Store keeps documents in an S3 bucket. When a DynamoDB table is set,
// each Put also writes a revision row keyed DOC#<key>.
type S3Store struct {
	s3        S3API
	dynamoDB  DynamoAPI
	bucket    string
	tableName string
	now       func() time.Time
}

// NewS3Store loads AWS config (shared profile when set, else the default
// chain) and creates the store. tableName may be empty.
func NewS3Store(ctx context.Context, bucket, tableName, region, profile string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("storage: s3 bucket is required for the aws backend")
	}
	var cfg aws.Config
	var err error
	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	var ddb DynamoAPI
	if tableName != "" {
		ddb = dynamodb.NewFromConfig(cfg)
	}
	return NewS3StoreWithClients(s3.NewFromConfig(cfg), ddb, bucket, tableName), nil
}

// NewS3StoreWithClients wraps existing clients. ddb may be nil.
func NewS3StoreWithClients(s3c S3API, ddb DynamoAPI, bucket, tableName string) *S3Store {
	return &S3Store{s3: s3c, dynamoDB: ddb, bucket: bucket, tableName: tableName, now: time.Now}
}

// Backend implements Store.
func (s *S3Store) Backend() string { return "s3" }

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	result, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("get %s: %w", k, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("getting object from S3: %w", err)
	}
	defer result.Body.Close()
	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading S3 object: %w", err)
	}
	return data, nil
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctype := mime.TypeByExtension(path.Ext(k))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ctype),
	})
	if err != nil {
		return fmt.Errorf("putting object to S3: %w", err)
	}
	if s.dynamoDB == nil {
		return nil
	}

	now := s.now().UTC()
	item := revisionItem{
		PK:        "DOC#" + k,
		SK:        now.Format(time.RFC3339Nano),
		Key:       k,
		Size:      int64(len(data)),
		Timestamp: now.Format(time.RFC3339),
		TTL:       now.Add(revisionRetention).Unix(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling revision: %w", err)
	}
	_, err = s.dynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting revision to DynamoDB: %w", err)
	}
	return nil
}

// Revisions implements Store. Newest first; empty without a revision table.
func (s *S3Store) Revisions(ctx context.Context, key string) ([]domain.ContentRevision, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	out := []domain.ContentRevision{}
	if s.dynamoDB == nil {
		return out, nil
	}
	result, err := s.dynamoDB.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "DOC#" + k},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(100),
	})
	if err != nil {
		return nil, fmt.Errorf("querying DynamoDB: %w", err)
	}
	for _, raw := range result.Items {
		var item revisionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		written, err := time.Parse(time.RFC3339Nano, item.SK)
		if err != nil {
			continue
		}
		out = append(out, domain.ContentRevision{Key: item.Key, WrittenAt: written, Size: item.Size})
	}
	return out, nil
}

// Ping implements Store.
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
