package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/google/uuid"
)

const exportLinkValidity = 15 * time.Minute

// S3 seams, replaced in tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportKey is the object key of a new export for userID.
func ExportKey(userID string, now time.Time) string {
	return fmt.Sprintf("exports/%s/%s-%s.json", userID, now.UTC().Format("20060102T150405Z"), uuid.NewString())
}

type exportDocument struct {
	ExportedAt int64            `json:"exportedAt"`
	Entries    []map[string]any `json:"entries"`
}

func (s *EntryService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export uploads userID's entries as a JSON document and returns a
// presigned link to it.
func (s *EntryService) Export(ctx context.Context, userID string) (string, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error listing entries: %w", err)
	}

	doc := exportDocument{ExportedAt: journal.NowMillis(), Entries: make([]map[string]any, 0, len(list))}
	for _, e := range list {
		rec := e.ToRecord()
		rec["id"] = e.ID
		doc.Entries = append(doc.Entries, rec)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error encoding export: %w", err)
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := ExportKey(userID, time.Now())

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportLinkValidity))
	if err != nil {
		return "", fmt.Errorf("error presigning export: %w", err)
	}

	s.logger.Info(ctx, "entries exported", "user_id", userID, "count", len(list), "key", key)
	return req.URL, nil
}
