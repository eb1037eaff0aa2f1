// Package storage archives final analyses to an S3-compatible bucket.
// Archiving is optional and best-effort; the pipeline logs and continues
// when a write fails.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
}

type SpacesClient struct {
	client *s3.Client
	bucket string
}

func NewSpacesClient(cfg SpacesConfig) (*SpacesClient, error) {
	const op = "storage.NewSpacesClient"

	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: cfg.Endpoint}, nil
		})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, apperrors.Configuration(op, err, "unable to load object storage config")
	}

	return &SpacesClient{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
	}, nil
}

// archivedAnalysis is the stored document shape. Credentials never appear in
// it; only the record's result and meta are written.
type archivedAnalysis struct {
	VideoID    string                 `json:"video_id"`
	Result     *models.AnalysisResult `json:"result"`
	Meta       models.AnalysisMeta    `json:"meta"`
	ArchivedAt time.Time              `json:"archived_at"`
}

// SaveAnalysis writes one final analysis under analyses/<videoID>.json.
func (s *SpacesClient) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) error {
	const op = "SpacesClient.SaveAnalysis"

	doc := archivedAnalysis{
		VideoID:    rec.VideoID,
		Result:     rec.Result,
		Meta:       rec.Meta,
		ArchivedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Internal(op, err, "failed to encode analysis for archive")
	}

	key := analysisKey(rec.VideoID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return apperrors.Transport(op, err, "failed to write analysis archive")
	}

	return nil
}

// GetAnalysis reads an archived analysis back, primarily for operational
// inspection; the serving path reads only the local cache.
func (s *SpacesClient) GetAnalysis(ctx context.Context, videoID string) (*models.AnalysisRecord, error) {
	const op = "SpacesClient.GetAnalysis"

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(analysisKey(videoID)),
	})
	if err != nil {
		return nil, apperrors.NotFound(op, err, "no archived analysis found")
	}
	defer result.Body.Close()

	var doc archivedAnalysis
	if err := json.NewDecoder(result.Body).Decode(&doc); err != nil {
		return nil, apperrors.Internal(op, err, "failed to decode archived analysis")
	}

	return &models.AnalysisRecord{
		VideoID:   doc.VideoID,
		Result:    doc.Result,
		Meta:      doc.Meta,
		UpdatedAt: doc.ArchivedAt,
	}, nil
}

func analysisKey(videoID string) string {
	return fmt.Sprintf("analyses/%s.json", videoID)
}
