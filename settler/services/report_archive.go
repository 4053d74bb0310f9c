package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReportArchive uploads settlement run reports to a Spaces bucket so
// operators can audit past runs and re-run failed users.
type ReportArchive struct {
	client     *s3.Client
	bucket     string
	reportRoot string
}

func NewReportArchive(key, secret, region, bucket, reportRoot string) (*ReportArchive, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &ReportArchive{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		reportRoot: strings.Trim(reportRoot, "/"),
	}, nil
}

// Upload stores the report as JSON under <reportRoot>/reports/<date>.json,
// overwriting any archive from an earlier run of the same date.
func (a *ReportArchive) Upload(ctx context.Context, report *RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := fmt.Sprintf("reports/%s.json", report.Date)
	if a.reportRoot != "" {
		key = a.reportRoot + "/" + key
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	slog.Info("Run report archived",
		slog.String("type", "run"),
		slog.String("bucket", a.bucket),
		slog.String("key", key))
	return nil
}
